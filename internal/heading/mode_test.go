package heading

import (
	"compass_apiserver/internal/sensor"
	"testing"

	"go.viam.com/test"
)

func availableOf(types ...sensor.Type) func(sensor.Type) bool {
	return func(t sensor.Type) bool {
		for _, a := range types {
			if a == t {
				return true
			}
		}
		return false
	}
}

func TestSelectMode(t *testing.T) {
	cases := []struct {
		name      string
		available []sensor.Type
		want      Mode
	}{
		{"all", sensor.AllTypes, ModeRotationVector},
		{"rotation vector only", []sensor.Type{sensor.TypeRotationVector}, ModeRotationVector},
		{"gravity and magnetometer", []sensor.Type{sensor.TypeMagneticField, sensor.TypeGravity, sensor.TypeAccelerometer}, ModeGravityMag},
		{"accelerometer and magnetometer", []sensor.Type{sensor.TypeMagneticField, sensor.TypeAccelerometer}, ModeAccelMag},
		{"gravity without magnetometer", []sensor.Type{sensor.TypeGravity, sensor.TypeAccelerometer}, ModeUnselected},
		{"magnetometer only", []sensor.Type{sensor.TypeMagneticField}, ModeUnselected},
		{"nothing", nil, ModeUnselected},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			avail := availableOf(c.available...)
			test.That(t, SelectMode(avail), test.ShouldEqual, c.want)
			// same inputs, same answer
			test.That(t, SelectMode(avail), test.ShouldEqual, c.want)
		})
	}
}

func TestModeTypes(t *testing.T) {
	test.That(t, ModeRotationVector.Types(), test.ShouldResemble, []sensor.Type{sensor.TypeRotationVector})
	test.That(t, ModeGravityMag.Types(), test.ShouldResemble, []sensor.Type{sensor.TypeMagneticField, sensor.TypeGravity})
	test.That(t, ModeAccelMag.Types(), test.ShouldResemble, []sensor.Type{sensor.TypeMagneticField, sensor.TypeAccelerometer})
	test.That(t, ModeUnselected.Types(), test.ShouldBeNil)
}

func TestModeString(t *testing.T) {
	test.That(t, ModeAccelMag.String(), test.ShouldEqual, "accel+mag")
	test.That(t, ModeGravityMag.String(), test.ShouldEqual, "gravity+mag")
	test.That(t, ModeRotationVector.String(), test.ShouldEqual, "rotation-vector")
	test.That(t, ModeUnselected.String(), test.ShouldEqual, "unselected")
	test.That(t, int(ModeAccelMag), test.ShouldEqual, 0)
	test.That(t, int(ModeRotationVector), test.ShouldEqual, 2)
}
