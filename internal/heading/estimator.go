// Package heading turns cached sensor vectors into a compass azimuth.
package heading

import (
	"compass_apiserver/internal/orientation"
	"compass_apiserver/internal/sensor"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Estimator caches the last vector of every sensor type and recomputes the
// azimuth on each update. It is not safe for concurrent use; a session feeds
// it from a single goroutine.
type Estimator struct {
	mode Mode

	magneticField  [3]float64
	acceleration   [3]float64
	gravity        [3]float64
	rotationVector [5]float64
	rotationLen    int

	azimuth int
}

func NewEstimator(mode Mode) *Estimator {
	return &Estimator{mode: mode}
}

func (e *Estimator) Mode() Mode { return e.mode }

// SetMode switches the computation path. Cached vectors and the azimuth are kept.
func (e *Estimator) SetMode(mode Mode) { e.mode = mode }

// Azimuth returns the last successfully computed azimuth.
func (e *Estimator) Azimuth() int { return e.azimuth }

// store overwrites the cached vector of ev's type in place.
func (e *Estimator) store(ev sensor.Event) {
	var dst []float64
	switch ev.Type {
	case sensor.TypeMagneticField:
		dst = e.magneticField[:]
	case sensor.TypeAccelerometer:
		dst = e.acceleration[:]
	case sensor.TypeGravity:
		dst = e.gravity[:]
	case sensor.TypeRotationVector:
		dst = e.rotationVector[:]
		if len(ev.Values) > e.rotationLen {
			e.rotationLen = min(len(ev.Values), len(dst))
		}
	default:
		return
	}
	for i := 0; i < len(dst) && i < len(ev.Values); i++ {
		dst[i] = float64(ev.Values[i])
	}
}

func (e *Estimator) rotationMatrix() (*mat.Dense, bool) {
	switch e.mode {
	case ModeAccelMag:
		return orientation.RotationMatrix(
			orientation.Vector(e.acceleration[:]), orientation.Vector(e.magneticField[:]))
	case ModeGravityMag:
		return orientation.RotationMatrix(
			orientation.Vector(e.gravity[:]), orientation.Vector(e.magneticField[:]))
	case ModeRotationVector:
		n := e.rotationLen
		if n < 3 {
			n = 3
		}
		return orientation.RotationMatrixFromVector(e.rotationVector[:n]), true
	default:
		return nil, false
	}
}

// Update caches ev and recomputes the azimuth. When the rotation matrix cannot
// be derived the previous azimuth is kept and ok is false.
func (e *Estimator) Update(ev sensor.Event) (azimuth int, ok bool) {
	e.store(ev)
	r, ok := e.rotationMatrix()
	if !ok {
		return e.azimuth, false
	}
	e.azimuth = Normalize(int(Degrees(orientation.Orientation(r)[0])))
	return e.azimuth, true
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Normalize maps whole degrees into [0, 360).
func Normalize(deg int) int {
	return (deg%360 + 360) % 360
}

// Format renders an azimuth the way it is displayed.
func Format(azimuth int) string {
	return fmt.Sprintf("%d°", azimuth)
}
