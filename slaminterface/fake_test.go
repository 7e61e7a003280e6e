package slaminterface

import (
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

type fakePublisher struct {
	msgs     []ros.Message
	shutdown bool
}

func (p *fakePublisher) Publish(msg ros.Message) { p.msgs = append(p.msgs, msg) }
func (p *fakePublisher) GetNumSubscribers() int  { return 1 }
func (p *fakePublisher) Shutdown()               { p.shutdown = true }

type fakeSubscriber struct {
	callback  interface{}
	queueSize int
	shutdown  bool
}

func (s *fakeSubscriber) GetNumPublishers() int { return 1 }
func (s *fakeSubscriber) Shutdown()             { s.shutdown = true }

type fakeTimer struct {
	period   ros.Duration
	callback func(ros.TimerEvent)
	stopped  bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

// fakeNode records what the interface asks of the node.
type fakeNode struct {
	params      map[string]interface{}
	publishers  map[string]*fakePublisher
	subscribers map[string]*fakeSubscriber
	timers      []*fakeTimer
	calls       []string
	logger      *logrus.Entry
}

func newFakeNode(params map[string]interface{}) *fakeNode {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return &fakeNode{
		params:      params,
		publishers:  make(map[string]*fakePublisher),
		subscribers: make(map[string]*fakeSubscriber),
		logger:      logrus.NewEntry(logger),
	}
}

func (n *fakeNode) HasParam(name string) (bool, error) {
	n.calls = append(n.calls, "param "+name)
	_, ok := n.params[name]
	return ok, nil
}

func (n *fakeNode) GetParam(name string) (interface{}, error) {
	return n.params[name], nil
}

func (n *fakeNode) NewPublisher(topic string, msgType ros.MessageType) (ros.Publisher, error) {
	n.calls = append(n.calls, "advertise "+topic)
	p := &fakePublisher{}
	n.publishers[topic] = p
	return p, nil
}

func (n *fakeNode) NewSubscriberWithQueueSize(topic string, msgType ros.MessageType, queueSize int, callback interface{}) (ros.Subscriber, error) {
	n.calls = append(n.calls, "subscribe "+topic)
	s := &fakeSubscriber{callback: callback, queueSize: queueSize}
	n.subscribers[topic] = s
	return s, nil
}

func (n *fakeNode) NewTimer(period ros.Duration, callback func(ros.TimerEvent)) ros.Timer {
	n.calls = append(n.calls, "timer")
	t := &fakeTimer{period: period, callback: callback}
	n.timers = append(n.timers, t)
	return t
}

func (n *fakeNode) Logger() *logrus.Entry {
	return n.logger
}

func (n *fakeNode) published(topic string) []ros.Message {
	return n.publishers[topic].msgs
}

// fakeSystem returns scripted poses in order, then nil.
type fakeSystem struct {
	mu       sync.Mutex
	poses    []*mat.Dense
	err      error
	points   []*slam.MapPoint
	calls    []string
	stamps   []float64
	shutdown int
}

func (s *fakeSystem) next(call string, stamp float64) (*mat.Dense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	s.stamps = append(s.stamps, stamp)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.poses) == 0 {
		return nil, nil
	}
	pose := s.poses[0]
	s.poses = s.poses[1:]
	return pose, nil
}

func (s *fakeSystem) TrackMonocular(img slam.Frame, timestamp float64) (*mat.Dense, error) {
	return s.next("mono", timestamp)
}

func (s *fakeSystem) TrackStereo(left, right slam.Frame, timestamp float64) (*mat.Dense, error) {
	return s.next("stereo", timestamp)
}

func (s *fakeSystem) TrackRGBD(rgb, depth slam.Frame, timestamp float64) (*mat.Dense, error) {
	return s.next("rgbd", timestamp)
}

func (s *fakeSystem) GetTrackedMapPoints() []*slam.MapPoint {
	return s.points
}

func (s *fakeSystem) Shutdown() {
	s.shutdown++
}

// engineFiles writes a vocabulary placeholder and a settings file usable
// by every sensor type.
func engineFiles(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vocabulary := filepath.Join(dir, "ORBvoc.txt")
	if err := ioutil.WriteFile(vocabulary, []byte("vocabulary"), 0644); err != nil {
		t.Fatal(err)
	}
	settings := filepath.Join(dir, "camera.yaml")
	s := &slam.Settings{Fx: 525, Fy: 525, Cx: 319.5, Cy: 239.5, FPS: 30, Bf: 40, NFeatures: 1000, ScaleFactor: 1.2, NLevels: 8}
	if err := s.WriteFile(settings); err != nil {
		t.Fatal(err)
	}
	return vocabulary, settings
}

func requiredParams(t *testing.T) map[string]interface{} {
	vocabulary, settings := engineFiles(t)
	return map[string]interface{}{
		"~vocabulary_file_path": vocabulary,
		"~settings_file_path":   settings,
	}
}

func factoryFor(system *fakeSystem, got *slam.Config) slam.Factory {
	return func(cfg slam.Config) (slam.System, error) {
		if got != nil {
			*got = cfg
		}
		return system, nil
	}
}
