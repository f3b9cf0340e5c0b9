package heading

import (
	"compass_apiserver/internal/sensor"
	"compass_apiserver/internal/sensor/sim"
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func events(heading float64, types ...sensor.Type) []sensor.Event {
	return sim.Sample("sim", types, heading, 40, 30, 0, 0)
}

func feed(e *Estimator, evs []sensor.Event) (int, bool) {
	var az int
	var ok bool
	for _, ev := range evs {
		az, ok = e.Update(ev)
	}
	return az, ok
}

func TestNormalize(t *testing.T) {
	cases := map[int]int{
		0:    0,
		359:  359,
		360:  0,
		-1:   359,
		-180: 180,
		180:  180,
		725:  5,
		-725: 355,
	}
	for in, want := range cases {
		test.That(t, Normalize(in), test.ShouldEqual, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for deg := -1000; deg <= 1000; deg++ {
		n := Normalize(deg)
		test.That(t, n, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, n, test.ShouldBeLessThan, 360)
		test.That(t, Normalize(n), test.ShouldEqual, n)
	}
}

func TestNormalizeTruncatesTowardZero(t *testing.T) {
	// -0.7 degrees truncates to 0, not -1
	test.That(t, Normalize(int(Degrees(-0.7*math.Pi/180))), test.ShouldEqual, 0)
	test.That(t, Normalize(int(Degrees(-1.2*math.Pi/180))), test.ShouldEqual, 359)
}

func TestFormat(t *testing.T) {
	test.That(t, Format(7), test.ShouldEqual, "7°")
	test.That(t, Format(359), test.ShouldEqual, "359°")
}

func TestEstimatorModes(t *testing.T) {
	cases := []struct {
		mode  Mode
		types []sensor.Type
	}{
		{ModeAccelMag, []sensor.Type{sensor.TypeMagneticField, sensor.TypeAccelerometer}},
		{ModeGravityMag, []sensor.Type{sensor.TypeMagneticField, sensor.TypeGravity}},
		{ModeRotationVector, []sensor.Type{sensor.TypeRotationVector}},
	}
	for _, c := range cases {
		t.Run(c.mode.String(), func(t *testing.T) {
			e := NewEstimator(c.mode)
			for _, h := range []float64{0, 10.5, 90, 180.2, 269.9, 345} {
				az, ok := feed(e, events(h, c.types...))
				test.That(t, ok, test.ShouldBeTrue)
				// azimuth is truncated, allow for float error around whole degrees
				test.That(t, math.Abs(float64(az)-math.Floor(h)), test.ShouldBeLessThanOrEqualTo, 1.0)
				test.That(t, e.Azimuth(), test.ShouldEqual, az)
			}
		})
	}
}

func TestEstimatorAlwaysInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	e := NewEstimator(ModeAccelMag)
	for i := 0; i < 2000; i++ {
		ev := sensor.Event{Type: sensor.TypeMagneticField, Values: []float32{
			float32(rnd.NormFloat64() * 40), float32(rnd.NormFloat64() * 40), float32(rnd.NormFloat64() * 40),
		}}
		if i%2 == 1 {
			ev.Type = sensor.TypeAccelerometer
			for j := range ev.Values {
				ev.Values[j] = float32(rnd.NormFloat64() * 9.8)
			}
		}
		az, _ := e.Update(ev)
		test.That(t, az, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, az, test.ShouldBeLessThan, 360)
	}
}

func TestEstimatorFailureKeepsAzimuth(t *testing.T) {
	e := NewEstimator(ModeAccelMag)
	az, ok := feed(e, events(123.4, sensor.TypeMagneticField, sensor.TypeAccelerometer))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldEqual, 123)

	// free fall
	az, ok = e.Update(sensor.Event{Type: sensor.TypeAccelerometer, Values: []float32{0, 0, 0.1}})
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, az, test.ShouldEqual, 123)
	test.That(t, e.Azimuth(), test.ShouldEqual, 123)

	// stale magnetic vector is reused once gravity is back
	az, ok = e.Update(events(0.5, sensor.TypeAccelerometer)[0])
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldEqual, 123)
}

func TestEstimatorStaleVectors(t *testing.T) {
	e := NewEstimator(ModeGravityMag)
	// magnetic only, gravity still zero: cannot derive
	_, ok := e.Update(events(45.5, sensor.TypeMagneticField)[0])
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, e.Azimuth(), test.ShouldEqual, 0)

	az, ok := e.Update(events(45.5, sensor.TypeGravity)[0])
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldEqual, 45)

	// accelerometer events are cached but unused in gravity mode
	az, ok = e.Update(sensor.Event{Type: sensor.TypeAccelerometer, Values: []float32{0, 0, 0}})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldEqual, 45)
}

func TestEstimatorRotationVectorWithoutW(t *testing.T) {
	e := NewEstimator(ModeRotationVector)
	rv := events(90, sensor.TypeRotationVector)[0]
	rv.Values = rv.Values[:3]
	az, ok := e.Update(rv)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, math.Abs(float64(az)-90), test.ShouldBeLessThanOrEqualTo, 1.0)
}

func TestEstimatorUnselected(t *testing.T) {
	e := NewEstimator(ModeUnselected)
	_, ok := feed(e, events(10.5, sensor.AllTypes...))
	test.That(t, ok, test.ShouldBeFalse)

	e.SetMode(ModeAccelMag)
	test.That(t, e.Mode(), test.ShouldEqual, ModeAccelMag)
	// vectors cached while unselected are used after the switch
	az, ok := e.Update(events(10.5, sensor.TypeMagneticField)[0])
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, az, test.ShouldEqual, 10)
}
