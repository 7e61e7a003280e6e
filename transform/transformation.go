// Package transform holds the rigid-body pose type published by the node
// and its conversion from the 4x4 camera poses returned by ORB_SLAM2.
package transform

import (
	"math"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/geometry_msgs"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Transformation maps points of a child frame into its parent frame:
// p_parent = Rotation * p_child + Translation.
type Transformation struct {
	Rotation    quat.Number
	Translation [3]float64
}

// Identity returns the transformation that leaves every point in place.
func Identity() Transformation {
	return Transformation{Rotation: IdentityRotation}
}

// FromOrbSlamPose converts a homogeneous 4x4 pose. The engine computes in
// single precision, so entries are read as float32 before widening. The
// rotation block is orthonormalized by a round trip through axis-angle.
func FromOrbSlamPose(pose mat.Matrix) (Transformation, error) {
	if pose == nil {
		return Transformation{}, errors.New("nil pose")
	}
	if r, c := pose.Dims(); r != 4 || c != 4 {
		return Transformation{}, errors.Errorf("pose is %dx%d, want 4x4", r, c)
	}

	widened := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := float64(float32(pose.At(i, j)))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Transformation{}, errors.Errorf("pose entry (%d,%d) is %v", i, j, v)
			}
			widened.Set(i, j, v)
		}
	}

	block := widened.Slice(0, 3, 0, 3)
	if det := mat.Det(block); det < 1e-6 {
		return Transformation{}, errors.Errorf("pose rotation block has determinant %v", det)
	}
	rotation := AxisAngleFromQuaternion(Normalize(QuaternionFromRotationMatrix(block))).Quaternion()

	return Transformation{
		Rotation:    rotation,
		Translation: [3]float64{widened.At(0, 3), widened.At(1, 3), widened.At(2, 3)},
	}, nil
}

// Inverse returns the transformation mapping parent points to the child.
func (t Transformation) Inverse() Transformation {
	inv := quat.Conj(Normalize(t.Rotation))
	p := Rotate(inv, t.Translation)
	return Transformation{
		Rotation:    inv,
		Translation: [3]float64{-p[0], -p[1], -p[2]},
	}
}

// Compose returns t * other, applying other first.
func (t Transformation) Compose(other Transformation) Transformation {
	p := Rotate(t.Rotation, other.Translation)
	return Transformation{
		Rotation: Normalize(quat.Mul(t.Rotation, other.Rotation)),
		Translation: [3]float64{
			t.Translation[0] + p[0],
			t.Translation[1] + p[1],
			t.Translation[2] + p[2],
		},
	}
}

// Apply maps p from the child frame into the parent frame.
func (t Transformation) Apply(p [3]float64) [3]float64 {
	r := Rotate(t.Rotation, p)
	return [3]float64{r[0] + t.Translation[0], r[1] + t.Translation[1], r[2] + t.Translation[2]}
}

// RotationMatrix returns the 3x3 rotation part.
func (t Transformation) RotationMatrix() *mat.Dense {
	return RotationMatrix(t.Rotation)
}

// Matrix returns the homogeneous 4x4 form.
func (t Transformation) Matrix() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	m.Slice(0, 3, 0, 3).(*mat.Dense).Copy(t.RotationMatrix())
	for i := 0; i < 3; i++ {
		m.Set(i, 3, t.Translation[i])
	}
	m.Set(3, 3, 1)
	return m
}

func (t Transformation) quaternionMsg() geometry_msgs.Quaternion {
	return geometry_msgs.Quaternion{X: t.Rotation.Imag, Y: t.Rotation.Jmag, Z: t.Rotation.Kmag, W: t.Rotation.Real}
}

// ToTransformMsg converts t into a geometry_msgs/Transform.
func (t Transformation) ToTransformMsg() geometry_msgs.Transform {
	return geometry_msgs.Transform{
		Translation: geometry_msgs.Vector3{X: t.Translation[0], Y: t.Translation[1], Z: t.Translation[2]},
		Rotation:    t.quaternionMsg(),
	}
}

// ToPoseMsg converts t into a geometry_msgs/Pose.
func (t Transformation) ToPoseMsg() geometry_msgs.Pose {
	return geometry_msgs.Pose{
		Position:    geometry_msgs.Point{X: t.Translation[0], Y: t.Translation[1], Z: t.Translation[2]},
		Orientation: t.quaternionMsg(),
	}
}
