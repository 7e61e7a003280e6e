// Package slam describes the visual SLAM engine the node drives. The
// engine itself lives outside this module; see package orbslam2 for the
// binding to ORB_SLAM2.
package slam

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SensorType selects how frames are fed to the engine.
type SensorType int

const (
	Monocular SensorType = iota
	Stereo
	RGBD
)

func (s SensorType) String() string {
	switch s {
	case Monocular:
		return "mono"
	case Stereo:
		return "stereo"
	case RGBD:
		return "rgbd"
	}
	return "unknown"
}

// ParseSensorType accepts the interface_type parameter values.
func ParseSensorType(s string) (SensorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mono", "monocular":
		return Monocular, nil
	case "stereo":
		return Stereo, nil
	case "rgbd":
		return RGBD, nil
	}
	return 0, errors.Errorf("unknown interface type %q", s)
}

// MapPoint is a triangulated landmark. WorldPos is empty when the engine
// has no position for it (a bad point).
type MapPoint struct {
	WorldPos []float32
}

// Empty reports whether the point carries no usable position.
func (p *MapPoint) Empty() bool {
	return p == nil || len(p.WorldPos) < 3
}

// System is the SLAM engine. Track* return the camera pose T_C_W as a 4x4
// matrix, or nil when tracking is not initialized or was lost. Calls are
// not safe for concurrent use.
type System interface {
	TrackMonocular(img Frame, timestamp float64) (*mat.Dense, error)
	TrackStereo(left, right Frame, timestamp float64) (*mat.Dense, error)
	TrackRGBD(rgb, depth Frame, timestamp float64) (*mat.Dense, error)
	// GetTrackedMapPoints returns the map points matched in the last
	// tracked frame; entries may be nil.
	GetTrackedMapPoints() []*MapPoint
	Shutdown()
}

// Factory builds an engine from a validated configuration.
type Factory func(cfg Config) (System, error)
