// Package pointcloud packs engine map points into sensor_msgs/PointCloud2
// using the PCL PointXYZRGB memory layout.
package pointcloud

import (
	"encoding/binary"
	"math"

	"github.com/ethz-asl/orb_slam_2_ros/msgs/sensor_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/msgs/std_msgs"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
)

const (
	// PointStep is sizeof(pcl::PointXYZRGB): xyz padded to 16 bytes, then
	// rgb padded to 16 bytes.
	PointStep = 32
	// FrameID is the frame map points are expressed in.
	FrameID = "world"
)

// White is the packed colour given to every map point.
var White = PackRGB(255, 255, 255)

// Fields describes the PointXYZRGB layout.
var Fields = []sensor_msgs.PointField{
	{Name: "x", Offset: 0, Datatype: sensor_msgs.FLOAT32, Count: 1},
	{Name: "y", Offset: 4, Datatype: sensor_msgs.FLOAT32, Count: 1},
	{Name: "z", Offset: 8, Datatype: sensor_msgs.FLOAT32, Count: 1},
	{Name: "rgb", Offset: 16, Datatype: sensor_msgs.FLOAT32, Count: 1},
}

// PackRGB packs an opaque colour the way PCL stores it in the rgb float.
func PackRGB(r, g, b uint8) uint32 {
	return 0xff<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// FromMapPoints builds a cloud from points, skipping nil entries and
// points without a world position. The header is copied with its frame
// replaced by FrameID.
func FromMapPoints(points []*slam.MapPoint, header std_msgs.Header) *sensor_msgs.PointCloud2 {
	valid := make([]*slam.MapPoint, 0, len(points))
	for _, p := range points {
		if !p.Empty() {
			valid = append(valid, p)
		}
	}

	header.FrameId = FrameID
	n := len(valid)
	cloud := &sensor_msgs.PointCloud2{
		Header:      header,
		Height:      1,
		Width:       uint32(n),
		Fields:      append([]sensor_msgs.PointField(nil), Fields...),
		IsBigendian: false,
		PointStep:   PointStep,
		RowStep:     uint32(PointStep * n),
		Data:        make([]uint8, PointStep*n),
		IsDense:     true,
	}
	for i, p := range valid {
		point := cloud.Data[i*PointStep:]
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(point[4*j:], math.Float32bits(p.WorldPos[j]))
		}
		// PCL leaves the fourth padding float of xyz at 1.
		binary.LittleEndian.PutUint32(point[12:], math.Float32bits(1))
		binary.LittleEndian.PutUint32(point[16:], White)
	}
	return cloud
}

// Point reads back the position of point i of a cloud built by
// FromMapPoints.
func Point(cloud *sensor_msgs.PointCloud2, i int) [3]float32 {
	point := cloud.Data[i*int(cloud.PointStep):]
	var xyz [3]float32
	for j := range xyz {
		xyz[j] = math.Float32frombits(binary.LittleEndian.Uint32(point[4*j:]))
	}
	return xyz
}
