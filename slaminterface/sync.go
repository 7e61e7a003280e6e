package slaminterface

import (
	"sync"
	"time"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
)

const (
	defaultQueueSize = 10
	defaultSlop      = 20 * time.Millisecond
)

// Synchronizer pairs images from two streams whose stamps differ by at
// most the slop. Each stream keeps at most queueSize unmatched images; the
// oldest are dropped first.
type Synchronizer struct {
	mu        sync.Mutex
	queues    [2][]*sensor_msgs.Image
	queueSize int
	slop      time.Duration
	dropped   int
	callback  func(first, second *sensor_msgs.Image)
}

func NewSynchronizer(queueSize int, slop time.Duration, callback func(first, second *sensor_msgs.Image)) *Synchronizer {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Synchronizer{
		queueSize: queueSize,
		slop:      slop,
		callback:  callback,
	}
}

// AddFirst queues an image of the first stream.
func (s *Synchronizer) AddFirst(msg *sensor_msgs.Image) {
	s.add(0, msg)
}

// AddSecond queues an image of the second stream.
func (s *Synchronizer) AddSecond(msg *sensor_msgs.Image) {
	s.add(1, msg)
}

// Dropped is the number of images discarded without a partner.
func (s *Synchronizer) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Synchronizer) add(stream int, msg *sensor_msgs.Image) {
	s.mu.Lock()
	q := append(s.queues[stream], msg)
	if len(q) > s.queueSize {
		s.dropped += len(q) - s.queueSize
		q = q[len(q)-s.queueSize:]
	}
	s.queues[stream] = q
	pairs := s.match()
	s.mu.Unlock()

	for _, p := range pairs {
		s.callback(p[0], p[1])
	}
}

// match pops matched pairs from the queue heads. A head that is older than
// the other head by more than the slop cannot match any later image and is
// dropped.
func (s *Synchronizer) match() [][2]*sensor_msgs.Image {
	var pairs [][2]*sensor_msgs.Image
	for len(s.queues[0]) > 0 && len(s.queues[1]) > 0 {
		first, second := s.queues[0][0], s.queues[1][0]
		diff := stampDiff(first, second)
		switch {
		case diff > s.slop:
			s.queues[1] = s.queues[1][1:]
			s.dropped++
		case diff < -s.slop:
			s.queues[0] = s.queues[0][1:]
			s.dropped++
		default:
			pairs = append(pairs, [2]*sensor_msgs.Image{first, second})
			s.queues[0] = s.queues[0][1:]
			s.queues[1] = s.queues[1][1:]
		}
	}
	return pairs
}

func stampDiff(a, b *sensor_msgs.Image) time.Duration {
	return time.Duration(int64(a.Header.Stamp.ToNSec()) - int64(b.Header.Stamp.ToNSec()))
}
