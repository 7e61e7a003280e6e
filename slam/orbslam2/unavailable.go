//go:build !orbslam2
// +build !orbslam2

package orbslam2

import (
	"github.com/ethz-asl/orb_slam_2_ros/slam"
)

// New reports ErrUnavailable; rebuild with -tags orbslam2.
func New(cfg slam.Config) (slam.System, error) {
	return nil, ErrUnavailable
}
