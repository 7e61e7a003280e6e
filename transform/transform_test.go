package transform

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const tolerance = 1e-6

func homogeneous(r *mat.Dense, t [3]float64) *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, r.At(i, j))
		}
		m.Set(i, 3, t[i])
	}
	m.Set(3, 3, 1)
	return m
}

func rotZ(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

func closeTo(a, b [3]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func TestFromOrbSlamPoseIdentity(t *testing.T) {
	pose := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		pose.Set(i, i, 1)
	}
	tr, err := FromOrbSlamPose(pose)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(tr.RotationMatrix(), mat.NewDiagDense(3, []float64{1, 1, 1}), tolerance) {
		t.Errorf("rotation\n%v", mat.Formatted(tr.RotationMatrix()))
	}
	if tr.Translation != [3]float64{} {
		t.Error(tr.Translation)
	}
}

func TestFromOrbSlamPoseRotationAndTranslation(t *testing.T) {
	r := rotZ(math.Pi / 2)
	tr, err := FromOrbSlamPose(homogeneous(r, [3]float64{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(tr.RotationMatrix(), r, tolerance) {
		t.Errorf("rotation\n%v", mat.Formatted(tr.RotationMatrix()))
	}
	if got := tr.Apply([3]float64{1, 0, 0}); !closeTo(got, [3]float64{1, 3, 3}) {
		t.Error(got)
	}
	if !mat.EqualApprox(tr.Matrix(), homogeneous(r, [3]float64{1, 2, 3}), tolerance) {
		t.Errorf("matrix\n%v", mat.Formatted(tr.Matrix()))
	}
}

func TestFromOrbSlamPoseWidensSinglePrecision(t *testing.T) {
	pose := homogeneous(rotZ(0), [3]float64{0.1, 0, 0})
	tr, err := FromOrbSlamPose(pose)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Translation[0] != float64(float32(0.1)) {
		t.Errorf("translation %v not widened from float32", tr.Translation[0])
	}
}

func TestFromOrbSlamPoseOrthonormalizes(t *testing.T) {
	r := rotZ(0.3)
	r.Scale(1.01, r)
	r.Set(0, 2, 0.005)
	tr, err := FromOrbSlamPose(homogeneous(r, [3]float64{}))
	if err != nil {
		t.Fatal(err)
	}
	rot := tr.RotationMatrix()
	var rtr mat.Dense
	rtr.Mul(rot.T(), rot)
	if !mat.EqualApprox(&rtr, mat.NewDiagDense(3, []float64{1, 1, 1}), tolerance) {
		t.Errorf("R^T R\n%v", mat.Formatted(&rtr))
	}
	if det := mat.Det(rot); math.Abs(det-1) > tolerance {
		t.Errorf("det %v", det)
	}
	// The quaternion of the unscaled block, normalized; not the polar factor.
	want := quat.Number{Real: 0.988714186144132, Jmag: 0.0012547835850971, Kmag: 0.149808823623648}
	got := tr.Rotation
	if got.Real < 0 {
		got = quat.Scale(-1, got)
	}
	if quat.Abs(quat.Sub(got, want)) > tolerance {
		t.Errorf("rotation %v, want %v", got, want)
	}
	wantRot := mat.NewDense(3, 3, []float64{
		0.955111483765, -0.296236218253, 0.00248124466225,
		0.296236218253, 0.955114632729, 0.000375955305571,
		-0.00248124466225, 0.000375955305571, 0.999996851036,
	})
	if !mat.EqualApprox(rot, wantRot, tolerance) {
		t.Errorf("rotation matrix\n%v", mat.Formatted(rot))
	}
}

func TestFromOrbSlamPoseRejectsBadInput(t *testing.T) {
	if _, err := FromOrbSlamPose(mat.NewDense(3, 4, nil)); err == nil {
		t.Error("3x4 pose accepted")
	}
	if _, err := FromOrbSlamPose(nil); err == nil {
		t.Error("nil pose accepted")
	}
	pose := homogeneous(rotZ(0), [3]float64{})
	pose.Set(1, 3, math.NaN())
	if _, err := FromOrbSlamPose(pose); err == nil {
		t.Error("NaN pose accepted")
	}
	if _, err := FromOrbSlamPose(mat.NewDense(4, 4, nil)); err == nil {
		t.Error("zero rotation block accepted")
	}
}

func TestShepperdBranches(t *testing.T) {
	rotations := []*mat.Dense{
		mat.NewDense(3, 3, []float64{1, 0, 0, 0, -1, 0, 0, 0, -1}),
		mat.NewDense(3, 3, []float64{-1, 0, 0, 0, 1, 0, 0, 0, -1}),
		mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, 1}),
		rotZ(2.5),
	}
	for i, r := range rotations {
		q := QuaternionFromRotationMatrix(r)
		if !mat.EqualApprox(RotationMatrix(Normalize(q)), r, tolerance) {
			t.Errorf("rotation %d: round trip\n%v", i, mat.Formatted(RotationMatrix(q)))
		}
	}
}

func TestAxisAngleRoundTrip(t *testing.T) {
	a := AxisAngle{Angle: 1.2, Axis: [3]float64{0, 0, 2}}
	back := AxisAngleFromQuaternion(a.Quaternion())
	if math.Abs(back.Angle-1.2) > tolerance || !closeTo(back.Axis, [3]float64{0, 0, 1}) {
		t.Error(back)
	}
	if zero := AxisAngleFromQuaternion(IdentityRotation); zero.Angle != 0 {
		t.Error(zero)
	}
}

func TestInverseAndCompose(t *testing.T) {
	tr, err := FromOrbSlamPose(homogeneous(rotZ(0.7), [3]float64{-1, 4, 0.5}))
	if err != nil {
		t.Fatal(err)
	}
	p := [3]float64{0.3, -2, 5}
	if got := tr.Inverse().Apply(tr.Apply(p)); !closeTo(got, p) {
		t.Error(got)
	}
	id := tr.Compose(tr.Inverse())
	if !closeTo(id.Translation, [3]float64{}) {
		t.Error(id.Translation)
	}
	if !mat.EqualApprox(id.RotationMatrix(), mat.NewDiagDense(3, []float64{1, 1, 1}), tolerance) {
		t.Errorf("rotation\n%v", mat.Formatted(id.RotationMatrix()))
	}

	twice := tr.Compose(tr)
	if got, want := twice.Apply(p), tr.Apply(tr.Apply(p)); !closeTo(got, want) {
		t.Error(got, want)
	}
}

func TestMessageConversion(t *testing.T) {
	tr := Identity()
	tr.Translation = [3]float64{1, 2, 3}
	msg := tr.ToTransformMsg()
	if msg.Translation.X != 1 || msg.Translation.Y != 2 || msg.Translation.Z != 3 {
		t.Error(msg.Translation)
	}
	if msg.Rotation.W != 1 || msg.Rotation.X != 0 {
		t.Error(msg.Rotation)
	}
	pose := tr.ToPoseMsg()
	if pose.Position.Z != 3 || pose.Orientation.W != 1 {
		t.Error(pose)
	}
}
