package slaminterface

import (
	"github.com/ethz-asl/orb_slam_2_ros/ros"
	"github.com/pkg/errors"
)

const (
	defaultVerbose      = true
	defaultFrameID      = "world"
	defaultChildFrameID = "cam0"
)

// Params are the interface's private ROS parameters.
type Params struct {
	VocabularyPath string
	SettingsPath   string
	// Verbose opens the engine's viewer.
	Verbose      bool
	FrameID      string
	ChildFrameID string
}

// ReadParams reads the private parameters. The two file paths are
// required.
func ReadParams(p ros.ParamServer) (Params, error) {
	params := Params{
		Verbose:      defaultVerbose,
		FrameID:      defaultFrameID,
		ChildFrameID: defaultChildFrameID,
	}

	var found bool
	var err error
	if params.VocabularyPath, found, err = ros.GetParamString(p, "~vocabulary_file_path"); err != nil {
		return params, err
	} else if !found {
		return params, errors.New("please provide the vocabulary_file_path as a ros param")
	}
	if params.SettingsPath, found, err = ros.GetParamString(p, "~settings_file_path"); err != nil {
		return params, err
	} else if !found {
		return params, errors.New("please provide the settings_file_path as a ros param")
	}

	if verbose, found, err := ros.GetParamBool(p, "~verbose"); err != nil {
		return params, err
	} else if found {
		params.Verbose = verbose
	}
	if frameID, found, err := ros.GetParamString(p, "~frame_id"); err != nil {
		return params, err
	} else if found {
		params.FrameID = frameID
	}
	if childFrameID, found, err := ros.GetParamString(p, "~child_frame_id"); err != nil {
		return params, err
	} else if found {
		params.ChildFrameID = childFrameID
	}
	return params, nil
}
