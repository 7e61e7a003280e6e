package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// IdentityRotation is the unit quaternion of the null rotation.
var IdentityRotation = quat.Number{Real: 1}

// Normalize scales q to unit length. A zero quaternion is returned as
// the identity rotation.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation
	}
	return quat.Scale(1/n, q)
}

// QuaternionFromRotationMatrix converts the upper-left 3x3 block of r
// with Shepperd's method, picking the numerically largest pivot.
func QuaternionFromRotationMatrix(r mat.Matrix) quat.Number {
	r00, r01, r02 := r.At(0, 0), r.At(0, 1), r.At(0, 2)
	r10, r11, r12 := r.At(1, 0), r.At(1, 1), r.At(1, 2)
	r20, r21, r22 := r.At(2, 0), r.At(2, 1), r.At(2, 2)

	var q quat.Number
	switch trace := r00 + r11 + r22; {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = quat.Number{Real: s / 4, Imag: (r21 - r12) / s, Jmag: (r02 - r20) / s, Kmag: (r10 - r01) / s}
	case r00 > r11 && r00 > r22:
		s := math.Sqrt(1+r00-r11-r22) * 2
		q = quat.Number{Real: (r21 - r12) / s, Imag: s / 4, Jmag: (r01 + r10) / s, Kmag: (r02 + r20) / s}
	case r11 > r22:
		s := math.Sqrt(1+r11-r00-r22) * 2
		q = quat.Number{Real: (r02 - r20) / s, Imag: (r01 + r10) / s, Jmag: s / 4, Kmag: (r12 + r21) / s}
	default:
		s := math.Sqrt(1+r22-r00-r11) * 2
		q = quat.Number{Real: (r10 - r01) / s, Imag: (r02 + r20) / s, Jmag: (r12 + r21) / s, Kmag: s / 4}
	}
	return q
}

// RotationMatrix returns the 3x3 rotation matrix of the unit quaternion q.
func RotationMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v [3]float64) [3]float64 {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2]}), quat.Conj(q))
	return [3]float64{p.Imag, p.Jmag, p.Kmag}
}

// AxisAngle is a rotation of Angle radians about the unit vector Axis.
type AxisAngle struct {
	Angle float64
	Axis  [3]float64
}

// AxisAngleFromQuaternion converts a unit quaternion the way Eigen's
// AngleAxis does. Near-zero rotations get the x axis.
func AxisAngleFromQuaternion(q quat.Number) AxisAngle {
	n := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-6 {
		return AxisAngle{Angle: 0, Axis: [3]float64{1, 0, 0}}
	}
	angle := 2 * math.Atan2(n, math.Abs(q.Real))
	if q.Real < 0 {
		angle = -angle
	}
	return AxisAngle{Angle: angle, Axis: [3]float64{q.Imag / n, q.Jmag / n, q.Kmag / n}}
}

// Quaternion converts a back to a unit quaternion. The axis is
// normalized first.
func (a AxisAngle) Quaternion() quat.Number {
	n := math.Sqrt(a.Axis[0]*a.Axis[0] + a.Axis[1]*a.Axis[1] + a.Axis[2]*a.Axis[2])
	if n == 0 {
		return IdentityRotation
	}
	s := math.Sin(a.Angle/2) / n
	return quat.Number{
		Real: math.Cos(a.Angle / 2),
		Imag: a.Axis[0] * s,
		Jmag: a.Axis[1] * s,
		Kmag: a.Axis[2] * s,
	}
}
