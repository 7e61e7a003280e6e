package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/ethz-asl/orb_slam_2_ros/slam"
	"github.com/ethz-asl/orb_slam_2_ros/slam/orbslam2"
	"github.com/ethz-asl/orb_slam_2_ros/slaminterface"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultInterfaceType = "mono"

func main() {
	node, err := ros.NewNode("/orb_slam_2_ros_node", os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
	defer node.Shutdown()

	if err := run(node); err != nil {
		node.Logger().WithError(err).Error("orb_slam_2_ros_node failed")
		node.Shutdown()
		os.Exit(1)
	}
}

func run(node ros.Node) error {
	logger := node.Logger()

	interfaceType, found, err := ros.GetParamString(node, "~interface_type")
	if err != nil {
		return err
	}
	if !found {
		interfaceType = defaultInterfaceType
	}
	sensor, err := slam.ParseSensorType(interfaceType)
	if err != nil {
		return errors.Wrap(err, "~interface_type")
	}

	iface, err := slaminterface.New(node, sensor, orbslam2.New)
	if err != nil {
		return err
	}
	defer iface.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		logger.Info("Spinning...")
		node.Spin()
		return nil
	})
	// The node handles interrupts itself; roslaunch stops nodes with SIGTERM.
	g.Go(func() error {
		terminate := make(chan os.Signal, 1)
		signal.Notify(terminate, syscall.SIGTERM)
		defer signal.Stop(terminate)
		select {
		case <-terminate:
			logger.Info("Terminated")
			node.Shutdown()
		case <-ctx.Done():
		}
		return nil
	})
	err = g.Wait()
	logger.Info("Shutting down...")
	return err
}
