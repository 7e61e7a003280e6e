// Package orbslam2 binds the ORB_SLAM2 library as a slam.System. The
// binding needs cgo, ORB_SLAM2 and OpenCV and is only compiled with the
// orbslam2 build tag:
//
//	CGO_CXXFLAGS="-I$ORB_SLAM2_ROOT/include -I$ORB_SLAM2_ROOT -I/usr/include/eigen3" \
//	CGO_LDFLAGS="-L$ORB_SLAM2_ROOT/lib" go build -tags orbslam2 ./...
//
// Without the tag New returns ErrUnavailable.
package orbslam2

import (
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrUnavailable is returned by New in builds without the engine.
var ErrUnavailable = errors.New("orbslam2: built without the orbslam2 tag")

// OpenCV depth codes.
const (
	cv8U  = 0
	cv16U = 2
	cv32F = 5
)

// cvType returns the cv::Mat type code of a frame.
func cvType(f slam.Frame) int {
	depth := cv8U
	switch f.Depth {
	case slam.Depth16U:
		depth = cv16U
	case slam.Depth32F:
		depth = cv32F
	}
	return depth + (f.Channels-1)<<3
}

// poseMatrix converts a row-major 4x4 float pose.
func poseMatrix(data [16]float32) *mat.Dense {
	values := make([]float64, 16)
	for i, v := range data {
		values[i] = float64(v)
	}
	return mat.NewDense(4, 4, values)
}

// mapPoints rebuilds map points from flattened xyz triples. Entries whose
// valid flag is zero become points with no position.
func mapPoints(xyz []float32, valid []bool) []*slam.MapPoint {
	points := make([]*slam.MapPoint, len(valid))
	for i, ok := range valid {
		if !ok {
			points[i] = &slam.MapPoint{}
			continue
		}
		points[i] = &slam.MapPoint{WorldPos: []float32{xyz[3*i], xyz[3*i+1], xyz[3*i+2]}}
	}
	return points
}

func checkPair(a, b slam.Frame) error {
	if a.Width != b.Width || a.Height != b.Height {
		return errors.Errorf("frame sizes differ: %dx%d and %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	return nil
}
