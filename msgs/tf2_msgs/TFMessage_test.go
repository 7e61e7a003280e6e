package tf2_msgs

import (
	"bytes"
	"testing"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/geometry_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/google/go-cmp/cmp"
)

func TestTFMessageRoundTrip(t *testing.T) {
	m := TFMessage{Transforms: []geometry_msgs.TransformStamped{
		{ChildFrameId: "cam0"},
		{ChildFrameId: "cam1"},
	}}
	m.Transforms[0].Header.FrameId = "world"
	m.Transforms[1].Transform.Rotation.W = 1
	var buf bytes.Buffer
	if err := m.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded TFMessage
	if err := decoded.Deserialize(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m, decoded, cmp.AllowUnexported(ros.Time{})); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
