//go:build orbslam2
// +build orbslam2

package orbslam2

/*
#cgo CXXFLAGS: -std=c++11
#cgo LDFLAGS: -lORB_SLAM2 -lopencv_core -lstdc++
#include <stdlib.h>
#include "orb_slam2_c.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var errShutdown = errors.New("orbslam2: engine is shut down")

type system struct {
	mu sync.Mutex
	c  *C.orbslam2_system
}

// New loads the vocabulary and starts the engine threads. Loading the
// vocabulary takes several seconds.
func New(cfg slam.Config) (slam.System, error) {
	vocabulary := C.CString(cfg.VocabularyPath)
	defer C.free(unsafe.Pointer(vocabulary))
	settings := C.CString(cfg.SettingsPath)
	defer C.free(unsafe.Pointer(settings))

	viewer := C.int(0)
	if cfg.UseViewer {
		viewer = 1
	}
	c := C.orbslam2_new(vocabulary, settings, C.int(cfg.Sensor), viewer)
	if c == nil {
		return nil, errors.New("orbslam2: engine failed to start")
	}
	return &system{c: c}, nil
}

func data(f slam.Frame) *C.uchar {
	return (*C.uchar)(unsafe.Pointer(&f.Data[0]))
}

func result(pose C.orbslam2_pose) (*mat.Dense, error) {
	switch pose.status {
	case 1:
		var values [16]float32
		for i := range values {
			values[i] = float32(pose.data[i])
		}
		return poseMatrix(values), nil
	case 0:
		return nil, nil
	}
	return nil, errors.New("orbslam2: tracking failed")
}

func (s *system) TrackMonocular(img slam.Frame, timestamp float64) (*mat.Dense, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil, errShutdown
	}
	return result(C.orbslam2_track_monocular(s.c, data(img),
		C.int(img.Height), C.int(img.Width), C.int(cvType(img)), C.size_t(img.Step),
		C.double(timestamp)))
}

func (s *system) TrackStereo(left, right slam.Frame, timestamp float64) (*mat.Dense, error) {
	if err := left.Validate(); err != nil {
		return nil, err
	}
	if err := right.Validate(); err != nil {
		return nil, err
	}
	if err := checkPair(left, right); err != nil {
		return nil, err
	}
	if left.Step != right.Step || cvType(left) != cvType(right) {
		return nil, errors.New("stereo frames differ in layout")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil, errShutdown
	}
	return result(C.orbslam2_track_stereo(s.c, data(left), data(right),
		C.int(left.Height), C.int(left.Width), C.int(cvType(left)), C.size_t(left.Step),
		C.double(timestamp)))
}

func (s *system) TrackRGBD(rgb, depth slam.Frame, timestamp float64) (*mat.Dense, error) {
	if err := rgb.Validate(); err != nil {
		return nil, err
	}
	if err := depth.Validate(); err != nil {
		return nil, err
	}
	if err := checkPair(rgb, depth); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil, errShutdown
	}
	return result(C.orbslam2_track_rgbd(s.c,
		data(rgb), C.int(rgb.Height), C.int(rgb.Width), C.int(cvType(rgb)), C.size_t(rgb.Step),
		data(depth), C.int(cvType(depth)), C.size_t(depth.Step),
		C.double(timestamp)))
}

func (s *system) GetTrackedMapPoints() []*slam.MapPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil
	}
	n := int(C.orbslam2_tracked_map_points(s.c, nil, nil, 0))
	if n == 0 {
		return nil
	}
	xyz := make([]C.float, 3*n)
	valid := make([]C.uchar, n)
	if got := int(C.orbslam2_tracked_map_points(s.c, &xyz[0], &valid[0], C.int(n))); got < n {
		n = got
	}
	coords := make([]float32, 3*n)
	flags := make([]bool, n)
	for i := 0; i < n; i++ {
		flags[i] = valid[i] != 0
		coords[3*i], coords[3*i+1], coords[3*i+2] = float32(xyz[3*i]), float32(xyz[3*i+1]), float32(xyz[3*i+2])
	}
	return mapPoints(coords, flags)
}

func (s *system) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	C.orbslam2_shutdown(s.c)
	C.orbslam2_delete(s.c)
	s.c = nil
}
