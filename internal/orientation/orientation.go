// Package orientation derives device orientation from sensor vectors.
//
// Matrices are 3x3 and map device coordinates to the world frame whose axes
// point east, north and up (the rows of the matrix, in that order).
package orientation

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// StandardGravity is the standard acceleration of free fall in m/s^2.
const StandardGravity = 9.80665

// freeFallGravitySquared is the squared norm below which the device is
// considered to be falling and the gravity direction is unknown.
const freeFallGravitySquared = 0.01 * StandardGravity * StandardGravity

// minHorizontalNorm rejects magnetic fields (nearly) parallel to gravity.
const minHorizontalNorm = 0.1

// Vector converts a sensor reading to an r3.Vector. Missing components are zero.
func Vector(values []float64) r3.Vector {
	var v [3]float64
	copy(v[:], values)
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// RotationMatrix computes the rotation matrix from a gravity (or acceleration)
// vector and a geomagnetic vector, both in device coordinates. It returns false
// when the device is in free fall or the field is aligned with gravity.
func RotationMatrix(gravity, geomagnetic r3.Vector) (*mat.Dense, bool) {
	if gravity.Norm2() < freeFallGravitySquared {
		return nil, false
	}
	east := geomagnetic.Cross(gravity)
	normH := east.Norm()
	if normH < minHorizontalNorm {
		return nil, false
	}
	east = east.Mul(1 / normH)
	up := gravity.Normalize()
	north := up.Cross(east)

	return mat.NewDense(3, 3, []float64{
		east.X, east.Y, east.Z,
		north.X, north.Y, north.Z,
		up.X, up.Y, up.Z,
	}), true
}

// QuatFromRotationVector reads a rotation vector (x, y, z[, w[, accuracy]]).
// When w is absent it is recovered from the unit norm.
func QuatFromRotationVector(rv []float64) quat.Number {
	var q quat.Number
	if len(rv) > 0 {
		q.Imag = rv[0]
	}
	if len(rv) > 1 {
		q.Jmag = rv[1]
	}
	if len(rv) > 2 {
		q.Kmag = rv[2]
	}
	if len(rv) >= 4 {
		q.Real = rv[3]
	} else {
		w := 1 - q.Imag*q.Imag - q.Jmag*q.Jmag - q.Kmag*q.Kmag
		if w > 0 {
			q.Real = math.Sqrt(w)
		}
	}
	return q
}

// RotationMatrixFromQuat converts a unit quaternion to a rotation matrix.
func RotationMatrixFromQuat(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*z*w, 2*x*z + 2*y*w,
		2*x*y + 2*z*w, 1 - 2*x*x - 2*z*z, 2*y*z - 2*x*w,
		2*x*z - 2*y*w, 2*y*z + 2*x*w, 1 - 2*x*x - 2*y*y,
	})
}

// RotationMatrixFromVector computes the rotation matrix from a rotation vector.
func RotationMatrixFromVector(rv []float64) *mat.Dense {
	return RotationMatrixFromQuat(QuatFromRotationVector(rv))
}

// Orientation returns azimuth, pitch and roll in radians. Azimuth is the
// angle from magnetic north to the device's y axis, clockwise, in [-pi, pi].
func Orientation(r mat.Matrix) [3]float64 {
	return [3]float64{
		math.Atan2(r.At(0, 1), r.At(1, 1)),
		math.Asin(clamp(-r.At(2, 1), -1, 1)),
		math.Atan2(-r.At(2, 0), r.At(2, 2)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
