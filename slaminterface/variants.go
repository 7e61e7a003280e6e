package slaminterface

import (
	"github.com/ethz-asl/orb_slam_2_ros/cvbridge"
	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/pkg/errors"
)

// New starts the interface variant for sensor.
func New(node Node, sensor slam.SensorType, factory slam.Factory) (*Interface, error) {
	switch sensor {
	case slam.Monocular:
		m, err := NewMono(node, factory)
		if err != nil {
			return nil, err
		}
		return m.Interface, nil
	case slam.Stereo:
		s, err := NewStereo(node, factory)
		if err != nil {
			return nil, err
		}
		return s.Interface, nil
	case slam.RGBD:
		r, err := NewRGBD(node, factory)
		if err != nil {
			return nil, err
		}
		return r.Interface, nil
	}
	return nil, errors.Errorf("unsupported sensor type %v", sensor)
}

// Mono tracks a single camera.
type Mono struct {
	*Interface
}

func NewMono(node Node, factory slam.Factory) (*Mono, error) {
	base, err := newInterface(node, slam.Monocular, factory)
	if err != nil {
		return nil, err
	}
	m := &Mono{Interface: base}
	if err := base.subscribe("camera/image_raw", m.ImageCallback); err != nil {
		base.Shutdown()
		return nil, err
	}
	return m, nil
}

func (m *Mono) ImageCallback(msg *sensor_msgs.Image) {
	frame, err := cvbridge.ToFrame(msg)
	if err != nil {
		m.dropFrame(err, msg.Header)
		return
	}
	tCW, err := m.system.TrackMonocular(frame, frame.Stamp)
	if err != nil {
		m.dropFrame(err, msg.Header)
		return
	}
	m.HandleTrackingResult(tCW, msg.Header)
}

// Stereo tracks a rectified stereo pair.
type Stereo struct {
	*Interface
	sync *Synchronizer
}

func NewStereo(node Node, factory slam.Factory) (*Stereo, error) {
	base, err := newInterface(node, slam.Stereo, factory)
	if err != nil {
		return nil, err
	}
	s := &Stereo{Interface: base}
	s.sync = NewSynchronizer(defaultQueueSize, defaultSlop, s.StereoCallback)
	if err := base.subscribe("camera/left/image_raw", s.sync.AddFirst); err != nil {
		base.Shutdown()
		return nil, err
	}
	if err := base.subscribe("camera/right/image_raw", s.sync.AddSecond); err != nil {
		base.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Stereo) StereoCallback(left, right *sensor_msgs.Image) {
	leftFrame, err := cvbridge.ToFrame(left)
	if err != nil {
		s.dropFrame(errors.Wrap(err, "left"), left.Header)
		return
	}
	rightFrame, err := cvbridge.ToFrame(right)
	if err != nil {
		s.dropFrame(errors.Wrap(err, "right"), left.Header)
		return
	}
	tCW, err := s.system.TrackStereo(leftFrame, rightFrame, leftFrame.Stamp)
	if err != nil {
		s.dropFrame(err, left.Header)
		return
	}
	s.HandleTrackingResult(tCW, left.Header)
}

// RGBD tracks a colour camera with a registered depth image.
type RGBD struct {
	*Interface
	sync *Synchronizer
}

func NewRGBD(node Node, factory slam.Factory) (*RGBD, error) {
	base, err := newInterface(node, slam.RGBD, factory)
	if err != nil {
		return nil, err
	}
	r := &RGBD{Interface: base}
	r.sync = NewSynchronizer(defaultQueueSize, defaultSlop, r.RGBDCallback)
	if err := base.subscribe("camera/rgb/image_raw", r.sync.AddFirst); err != nil {
		base.Shutdown()
		return nil, err
	}
	if err := base.subscribe("camera/depth_registered/image_raw", r.sync.AddSecond); err != nil {
		base.Shutdown()
		return nil, err
	}
	return r, nil
}

func (r *RGBD) RGBDCallback(rgb, depth *sensor_msgs.Image) {
	rgbFrame, err := cvbridge.ToFrame(rgb)
	if err != nil {
		r.dropFrame(errors.Wrap(err, "rgb"), rgb.Header)
		return
	}
	depthFrame, err := cvbridge.ToFrame(depth)
	if err != nil {
		r.dropFrame(errors.Wrap(err, "depth"), rgb.Header)
		return
	}
	if depthFrame.Channels != 1 || depthFrame.Depth == slam.Depth8U {
		r.dropFrame(errors.Errorf("depth image has encoding %s", depth.Encoding), rgb.Header)
		return
	}
	tCW, err := r.system.TrackRGBD(rgbFrame, depthFrame, rgbFrame.Stamp)
	if err != nil {
		r.dropFrame(err, rgb.Header)
		return
	}
	r.HandleTrackingResult(tCW, rgb.Header)
}
