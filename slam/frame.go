package slam

import (
	"github.com/pkg/errors"
)

// Depth is the per-channel element type of a frame.
type Depth int

const (
	Depth8U Depth = iota
	Depth16U
	Depth32F
)

// Size is the number of bytes per channel element.
func (d Depth) Size() int {
	switch d {
	case Depth16U:
		return 2
	case Depth32F:
		return 4
	}
	return 1
}

// Frame is an image handed to the engine, laid out like a cv::Mat: rows of
// Step bytes, Channels interleaved elements of Depth per pixel, host byte
// order. Colour frames are ordered as their Encoding says (rgb8, bgr8...).
type Frame struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth
	Step     int
	Encoding string
	Data     []byte
	// Stamp is the acquisition time in seconds.
	Stamp float64
}

// Validate checks that Data covers Height rows of Step bytes.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	if f.Channels <= 0 {
		return errors.Errorf("invalid channel count %d", f.Channels)
	}
	if min := f.Width * f.Channels * f.Depth.Size(); f.Step < min {
		return errors.Errorf("step %d shorter than a row of %d bytes", f.Step, min)
	}
	if len(f.Data) < f.Step*f.Height {
		return errors.Errorf("frame data has %d bytes, want %d", len(f.Data), f.Step*f.Height)
	}
	return nil
}
