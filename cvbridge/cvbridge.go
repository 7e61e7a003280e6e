// Package cvbridge converts sensor_msgs/Image messages into engine frames
// and Go images.
package cvbridge

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/pkg/errors"
)

const (
	Mono8      = "mono8"
	Mono16     = "mono16"
	BGR8       = "bgr8"
	RGB8       = "rgb8"
	BGRA8      = "bgra8"
	RGBA8      = "rgba8"
	TYPE_8UC1  = "8UC1"
	TYPE_8UC3  = "8UC3"
	TYPE_16UC1 = "16UC1"
	TYPE_32FC1 = "32FC1"
)

type format struct {
	channels int
	depth    slam.Depth
}

var formats = map[string]format{
	Mono8:      {1, slam.Depth8U},
	Mono16:     {1, slam.Depth16U},
	BGR8:       {3, slam.Depth8U},
	RGB8:       {3, slam.Depth8U},
	BGRA8:      {4, slam.Depth8U},
	RGBA8:      {4, slam.Depth8U},
	TYPE_8UC1:  {1, slam.Depth8U},
	TYPE_8UC3:  {3, slam.Depth8U},
	TYPE_16UC1: {1, slam.Depth16U},
	TYPE_32FC1: {1, slam.Depth32F},
}

// ToFrame wraps msg as an engine frame. The frame shares msg.Data unless
// the payload is big-endian multi-byte data, which is copied and swapped
// to little-endian.
func ToFrame(msg *sensor_msgs.Image) (slam.Frame, error) {
	if msg == nil {
		return slam.Frame{}, errors.New("nil image")
	}
	f, ok := formats[msg.Encoding]
	if !ok {
		return slam.Frame{}, errors.Errorf("unsupported image encoding %q", msg.Encoding)
	}
	frame := slam.Frame{
		Width:    int(msg.Width),
		Height:   int(msg.Height),
		Channels: f.channels,
		Depth:    f.depth,
		Step:     int(msg.Step),
		Encoding: msg.Encoding,
		Data:     msg.Data,
		Stamp:    msg.Header.Stamp.ToSec(),
	}
	if err := frame.Validate(); err != nil {
		return slam.Frame{}, errors.Wrapf(err, "%s image", msg.Encoding)
	}
	if msg.IsBigendian != 0 && f.depth != slam.Depth8U {
		frame.Data = swapBytes(msg.Data[:frame.Step*frame.Height], f.depth.Size())
	}
	return frame, nil
}

func swapBytes(data []byte, size int) []byte {
	out := make([]byte, len(data))
	for i := 0; i+size <= len(data); i += size {
		for j := 0; j < size; j++ {
			out[i+j] = data[i+size-1-j]
		}
	}
	return out
}

// ToImage renders a frame for inspection. Colour frames become NRGBA
// images and depth frames in metres (32FC1) millimetre Gray16 images.
func ToImage(frame slam.Frame) (image.Image, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, frame.Width, frame.Height)
	switch {
	case frame.Channels == 1 && frame.Depth == slam.Depth8U:
		img := image.NewGray(rect)
		for y := 0; y < frame.Height; y++ {
			copy(img.Pix[y*img.Stride:], frame.Data[y*frame.Step:y*frame.Step+frame.Width])
		}
		return img, nil
	case frame.Channels == 1 && frame.Depth == slam.Depth16U:
		img := image.NewGray16(rect)
		for y := 0; y < frame.Height; y++ {
			row := frame.Data[y*frame.Step:]
			for x := 0; x < frame.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: binary.LittleEndian.Uint16(row[2*x:])})
			}
		}
		return img, nil
	case frame.Channels == 1 && frame.Depth == slam.Depth32F:
		img := image.NewGray16(rect)
		for y := 0; y < frame.Height; y++ {
			row := frame.Data[y*frame.Step:]
			for x := 0; x < frame.Width; x++ {
				metres := math.Float32frombits(binary.LittleEndian.Uint32(row[4*x:]))
				img.SetGray16(x, y, color.Gray16{Y: millimetres(metres)})
			}
		}
		return img, nil
	case (frame.Channels == 3 || frame.Channels == 4) && frame.Depth == slam.Depth8U:
		img := image.NewNRGBA(rect)
		bgr := frame.Encoding == BGR8 || frame.Encoding == BGRA8 || frame.Encoding == TYPE_8UC3
		for y := 0; y < frame.Height; y++ {
			row := frame.Data[y*frame.Step:]
			for x := 0; x < frame.Width; x++ {
				px := row[x*frame.Channels:]
				c := color.NRGBA{R: px[0], G: px[1], B: px[2], A: 255}
				if bgr {
					c.R, c.B = c.B, c.R
				}
				if frame.Channels == 4 {
					c.A = px[3]
				}
				img.SetNRGBA(x, y, c)
			}
		}
		return img, nil
	}
	return nil, errors.Errorf("cannot render %d channel frame of depth %d", frame.Channels, frame.Depth)
}

func millimetres(metres float32) uint16 {
	switch mm := float64(metres) * 1000; {
	case math.IsNaN(mm) || mm <= 0:
		return 0
	case mm >= math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(mm + 0.5)
	}
}

// FromImage builds an Image message: mono8 for gray images, mono16 for
// 16-bit gray and rgba8 otherwise.
func FromImage(img image.Image) *sensor_msgs.Image {
	b := img.Bounds()
	msg := &sensor_msgs.Image{
		Height: uint32(b.Dy()),
		Width:  uint32(b.Dx()),
	}
	switch src := img.(type) {
	case *image.Gray:
		msg.Encoding = Mono8
		msg.Step = uint32(b.Dx())
		msg.Data = make([]byte, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			start := src.PixOffset(b.Min.X, y)
			msg.Data = append(msg.Data, src.Pix[start:start+b.Dx()]...)
		}
	case *image.Gray16:
		msg.Encoding = Mono16
		msg.Step = uint32(2 * b.Dx())
		msg.Data = make([]byte, 2*b.Dx()*b.Dy())
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				binary.LittleEndian.PutUint16(msg.Data[i:], src.Gray16At(x, y).Y)
				i += 2
			}
		}
	default:
		msg.Encoding = RGBA8
		msg.Step = uint32(4 * b.Dx())
		msg.Data = make([]byte, 0, 4*b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				msg.Data = append(msg.Data, c.R, c.G, c.B, c.A)
			}
		}
	}
	return msg
}
