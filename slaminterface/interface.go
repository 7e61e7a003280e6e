// Package slaminterface connects a SLAM engine to ROS: it feeds camera
// images to the engine and publishes the resulting camera pose, the TF
// frame and the tracked map points.
package slaminterface

import (
	"sync"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/geometry_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/msgs/std_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/msgs/tf2_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/pointcloud"
	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/ethz-asl/orb_slam_2_ros/transform"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const (
	// WorldFrameID is the frame poses and map points are expressed in.
	WorldFrameID = "world"

	tfTopic  = "/tf"
	tfPeriod = 0.01
	// Only the newest image is tracked when the engine falls behind.
	imageQueueSize = 1
)

// Node is the part of ros.Node the interface needs.
type Node interface {
	ros.ParamServer
	NewPublisher(topic string, msgType ros.MessageType) (ros.Publisher, error)
	NewSubscriberWithQueueSize(topic string, msgType ros.MessageType, queueSize int, callback interface{}) (ros.Subscriber, error)
	NewTimer(period ros.Duration, callback func(ros.TimerEvent)) ros.Timer
	Logger() *logrus.Entry
}

// Interface is the sensor independent part of the node. Its callbacks run
// on the goroutine spinning the node.
type Interface struct {
	node     Node
	logger   *logrus.Entry
	params   Params
	sensor   slam.SensorType
	settings *slam.Settings
	system   slam.System

	transformPub ros.Publisher
	posePub      ros.Publisher
	cloudPub     ros.Publisher
	tfPub        ros.Publisher
	tfTimer      ros.Timer
	subscribers  []ros.Subscriber

	// guards tWC, read by the TF timer
	mu  sync.Mutex
	tWC transform.Transformation

	shutdownOnce sync.Once
}

func newInterface(node Node, sensor slam.SensorType, factory slam.Factory) (*Interface, error) {
	i := &Interface{
		node:   node,
		logger: node.Logger().WithField("sensor", sensor.String()),
		sensor: sensor,
		tWC:    transform.Identity(),
	}
	if err := i.advertiseTopics(); err != nil {
		i.Shutdown()
		return nil, err
	}
	params, err := ReadParams(node)
	if err != nil {
		i.Shutdown()
		return nil, err
	}
	i.params = params

	settings, err := slam.LoadSettings(params.SettingsPath)
	if err != nil {
		i.Shutdown()
		return nil, err
	}
	if err := settings.Validate(sensor); err != nil {
		i.Shutdown()
		return nil, errors.Wrap(err, params.SettingsPath)
	}
	i.settings = settings

	cfg := slam.Config{
		VocabularyPath: params.VocabularyPath,
		SettingsPath:   params.SettingsPath,
		Sensor:         sensor,
		UseViewer:      params.Verbose,
	}
	if err := cfg.Validate(); err != nil {
		i.Shutdown()
		return nil, err
	}
	i.logger.WithFields(logrus.Fields{
		"vocabulary": cfg.VocabularyPath,
		"settings":   cfg.SettingsPath,
	}).Info("Starting SLAM engine")
	system, err := factory(cfg)
	if err != nil {
		i.Shutdown()
		return nil, errors.Wrap(err, "starting SLAM engine")
	}
	i.system = system
	return i, nil
}

func (i *Interface) advertiseTopics() error {
	var err error
	if i.transformPub, err = i.node.NewPublisher("~transform_cam", geometry_msgs.MsgTransformStamped); err != nil {
		return err
	}
	if i.posePub, err = i.node.NewPublisher("~pose_cam", geometry_msgs.MsgPoseStamped); err != nil {
		return err
	}
	if i.cloudPub, err = i.node.NewPublisher("~keypoints_cloud", sensor_msgs.MsgPointCloud2); err != nil {
		return err
	}
	if i.tfPub, err = i.node.NewPublisher(tfTopic, tf2_msgs.MsgTFMessage); err != nil {
		return err
	}
	i.tfTimer = i.node.NewTimer(ros.DurationFromSec(tfPeriod), i.publishCurrentPoseAsTF)
	return nil
}

func (i *Interface) subscribe(topic string, callback interface{}) error {
	sub, err := i.node.NewSubscriberWithQueueSize(topic, sensor_msgs.MsgImage, imageQueueSize, callback)
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", topic)
	}
	i.subscribers = append(i.subscribers, sub)
	return nil
}

// Params returns the parameters the interface was started with.
func (i *Interface) Params() Params {
	return i.params
}

// Settings returns the validated engine settings.
func (i *Interface) Settings() *slam.Settings {
	return i.settings
}

// CurrentPose returns T_W_C of the last tracked frame, identity before
// the first one.
func (i *Interface) CurrentPose() transform.Transformation {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tWC
}

// PublishCurrentPose publishes T as a TransformStamped with the given
// header and the configured child frame.
func (i *Interface) PublishCurrentPose(T transform.Transformation, header std_msgs.Header) {
	i.transformPub.Publish(&geometry_msgs.TransformStamped{
		Header:       header,
		ChildFrameId: i.params.ChildFrameID,
		Transform:    T.ToTransformMsg(),
	})
}

// PublishCurrentPoseAsPose publishes T as a PoseStamped in the world
// frame.
func (i *Interface) PublishCurrentPoseAsPose(T transform.Transformation, header std_msgs.Header) {
	header.FrameId = WorldFrameID
	i.posePub.Publish(&geometry_msgs.PoseStamped{
		Header: header,
		Pose:   T.ToPoseMsg(),
	})
}

// PublishPointCloud publishes the positioned points as a white
// PointXYZRGB cloud in the world frame.
func (i *Interface) PublishPointCloud(points []*slam.MapPoint, header std_msgs.Header) {
	i.cloudPub.Publish(pointcloud.FromMapPoints(points, header))
}

func (i *Interface) publishCurrentPoseAsTF(event ros.TimerEvent) {
	tWC := i.CurrentPose()
	i.tfPub.Publish(&tf2_msgs.TFMessage{
		Transforms: []geometry_msgs.TransformStamped{{
			Header:       std_msgs.Header{Stamp: ros.Now(), FrameId: i.params.FrameID},
			ChildFrameId: i.params.ChildFrameID,
			Transform:    tWC.ToTransformMsg(),
		}},
	})
}

// ConvertOrbSlamPoseToKindr converts an engine pose into a
// Transformation with an orthonormal rotation.
func ConvertOrbSlamPoseToKindr(T mat.Matrix) (transform.Transformation, error) {
	return transform.FromOrbSlamPose(T)
}

// HandleTrackingResult publishes the outcome of tracking one frame.
// tCW is the engine's world-to-camera pose, nil when tracking failed.
func (i *Interface) HandleTrackingResult(tCW *mat.Dense, header std_msgs.Header) {
	if tCW == nil {
		i.logger.WithField("stamp", header.Stamp.ToSec()).Debug("No pose for frame")
		return
	}
	cameraFromWorld, err := ConvertOrbSlamPoseToKindr(tCW)
	if err != nil {
		i.logger.WithError(err).Warn("Discarding engine pose")
		return
	}
	worldFromCamera := cameraFromWorld.Inverse()
	i.PublishCurrentPose(worldFromCamera, header)
	i.PublishCurrentPoseAsPose(worldFromCamera, header)
	i.PublishPointCloud(i.system.GetTrackedMapPoints(), header)

	i.mu.Lock()
	i.tWC = worldFromCamera
	i.mu.Unlock()
}

// dropFrame logs a frame that never reached the engine or failed in it.
func (i *Interface) dropFrame(err error, header std_msgs.Header) {
	i.logger.WithError(err).WithField("stamp", header.Stamp.ToSec()).Warn("Dropping frame")
}

// Shutdown stops publishing and shuts the engine down. The node's
// publishers are closed by the node itself.
func (i *Interface) Shutdown() {
	i.shutdownOnce.Do(func() {
		if i.tfTimer != nil {
			i.tfTimer.Stop()
		}
		for _, sub := range i.subscribers {
			sub.Shutdown()
		}
		if i.system != nil {
			i.logger.Info("Shutting SLAM engine down")
			i.system.Shutdown()
		}
	})
}
