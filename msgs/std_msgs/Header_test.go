package std_msgs

import (
	"bytes"
	"testing"

	"github.com/ethz-asl/orb_slam_2_ros/ros"
)

func TestHeaderWireLayout(t *testing.T) {
	h := Header{Seq: 7, Stamp: ros.NewTime(1, 2), FrameId: "world"}
	var buf bytes.Buffer
	if err := h.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		7, 0, 0, 0,
		1, 0, 0, 0,
		2, 0, 0, 0,
		5, 0, 0, 0, 'w', 'o', 'r', 'l', 'd',
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}

	var decoded Header
	if err := decoded.Deserialize(bytes.NewReader(want)); err != nil {
		t.Fatal(err)
	}
	if decoded != h {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestHeaderTruncated(t *testing.T) {
	var h Header
	if err := h.Deserialize(bytes.NewReader([]byte{1, 0, 0, 0, 2, 0})); err == nil {
		t.Error("truncated header decoded")
	}
}
