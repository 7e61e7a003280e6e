package cvbridge

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
)

func TestToFrameMono8SharesBuffer(t *testing.T) {
	msg := &sensor_msgs.Image{Height: 2, Width: 3, Encoding: Mono8, Step: 4, Data: make([]byte, 8)}
	msg.Header.Stamp = ros.NewTime(12, 500000000)
	frame, err := ToFrame(msg)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Channels != 1 || frame.Depth != slam.Depth8U || frame.Step != 4 {
		t.Errorf("%+v", frame)
	}
	if frame.Stamp != 12.5 {
		t.Error(frame.Stamp)
	}
	msg.Data[0] = 42
	if frame.Data[0] != 42 {
		t.Error("frame does not share the message buffer")
	}
}

func TestToFrameSwapsBigEndianDepth(t *testing.T) {
	msg := &sensor_msgs.Image{Height: 1, Width: 2, Encoding: TYPE_16UC1, Step: 4, IsBigendian: 1}
	msg.Data = []byte{0x01, 0x02, 0x03, 0x04}
	frame, err := ToFrame(msg)
	if err != nil {
		t.Fatal(err)
	}
	if v := binary.LittleEndian.Uint16(frame.Data); v != 0x0102 {
		t.Errorf("first pixel %#x", v)
	}
	if msg.Data[0] != 0x01 {
		t.Error("message buffer modified")
	}
}

func TestToFrameRejectsBadImages(t *testing.T) {
	cases := map[string]*sensor_msgs.Image{
		"encoding":  {Height: 1, Width: 1, Encoding: "yuv422", Step: 2, Data: make([]byte, 2)},
		"step":      {Height: 1, Width: 4, Encoding: RGB8, Step: 4, Data: make([]byte, 12)},
		"data":      {Height: 2, Width: 2, Encoding: Mono16, Step: 4, Data: make([]byte, 7)},
		"dimension": {Height: 0, Width: 2, Encoding: Mono8, Step: 2},
	}
	for name, msg := range cases {
		if _, err := ToFrame(msg); err == nil {
			t.Errorf("%s: bad image accepted", name)
		}
	}
	if _, err := ToFrame(nil); err == nil {
		t.Error("nil image accepted")
	}
}

func TestBGRToImage(t *testing.T) {
	msg := &sensor_msgs.Image{Height: 1, Width: 2, Encoding: BGR8, Step: 6, Data: []byte{10, 20, 30, 40, 50, 60}}
	frame, err := ToFrame(msg)
	if err != nil {
		t.Fatal(err)
	}
	img, err := ToImage(frame)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.At(0, 0).(color.NRGBA); c != (color.NRGBA{R: 30, G: 20, B: 10, A: 255}) {
		t.Error(c)
	}
	if c := img.At(1, 0).(color.NRGBA); c.R != 60 || c.B != 40 {
		t.Error(c)
	}
}

func TestDepthToImage(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(float32(math.NaN())))
	binary.LittleEndian.PutUint32(data[8:], math.Float32bits(100))
	frame, err := ToFrame(&sensor_msgs.Image{Height: 1, Width: 3, Encoding: TYPE_32FC1, Step: 12, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	img, err := ToImage(frame)
	if err != nil {
		t.Fatal(err)
	}
	gray := img.(*image.Gray16)
	for x, want := range []uint16{1500, 0, math.MaxUint16} {
		if got := gray.Gray16At(x, 0).Y; got != want {
			t.Errorf("pixel %d: %d, want %d", x, got, want)
		}
	}
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	src.SetGray(2, 1, color.Gray{Y: 200})
	msg := FromImage(src)
	if msg.Encoding != Mono8 || msg.Step != 3 || len(msg.Data) != 6 {
		t.Fatalf("%s step %d len %d", msg.Encoding, msg.Step, len(msg.Data))
	}
	frame, err := ToFrame(msg)
	if err != nil {
		t.Fatal(err)
	}
	img, err := ToImage(frame)
	if err != nil {
		t.Fatal(err)
	}
	if g := img.(*image.Gray).GrayAt(2, 1).Y; g != 200 {
		t.Error(g)
	}

	depth := image.NewGray16(image.Rect(0, 0, 2, 1))
	depth.SetGray16(1, 0, color.Gray16{Y: 1234})
	frame, err = ToFrame(FromImage(depth))
	if err != nil {
		t.Fatal(err)
	}
	if v := binary.LittleEndian.Uint16(frame.Data[2:]); v != 1234 {
		t.Error(v)
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	rgba.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	if msg := FromImage(rgba); msg.Encoding != RGBA8 || msg.Data[2] != 3 {
		t.Error(msg.Encoding, msg.Data)
	}
}
