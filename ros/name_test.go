package ros

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"~":                      true,
		"camera/image_raw":       true,
		"/camera/left/image_raw": true,
		"~transform_cam":         true,
		"~keypoints_cloud/":      true,
		"/tf":                    true,
		"camera//image_raw":      false,
		"2camera":                false,
		"camera/_raw":            false,
		"camera/~raw":            false,
		"camera image":           false,
	} {
		if got := isValidName(name); got != want {
			t.Errorf("isValidName(%q) = %v", name, got)
		}
	}
}

func TestCanonicalizeName(t *testing.T) {
	for name, want := range map[string]string{
		"/":                   "/",
		"/camera//image_raw/": "/camera/image_raw",
		"camera///rgb/":       "camera/rgb",
		"~pose_cam//":         "~pose_cam",
	} {
		if got := canonicalizeName(name); got != want {
			t.Errorf("canonicalizeName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNameResolverResolve(t *testing.T) {
	cases := []struct {
		namespace, node, name, want string
	}{
		{"/", "orb_slam_2_ros_node", "", "/"},
		{"/", "orb_slam_2_ros_node", "camera/image_raw", "/camera/image_raw"},
		{"/", "orb_slam_2_ros_node", "~pose_cam", "/orb_slam_2_ros_node/pose_cam"},
		{"/", "orb_slam_2_ros_node", "/tf", "/tf"},
		{"robot", "slam", "camera/rgb/image_raw", "/robot/camera/rgb/image_raw"},
		{"/robot/", "slam", "~transform_cam", "/robot/slam/transform_cam"},
		{"/robot", "slam", "//tf/", "/tf"},
	}
	for _, c := range cases {
		r := newNameResolver(c.namespace, c.node, nil)
		if got := r.resolve(c.name); got != c.want {
			t.Errorf("%s in %s: resolve(%q) = %q, want %q", c.node, c.namespace, c.name, got, c.want)
		}
	}
	if r := newNameResolver("robot", "slam", nil); r.nodeName != "/robot/slam" {
		t.Error(r.nodeName)
	}
}

func TestNameResolverRemap(t *testing.T) {
	cases := []struct {
		namespace string
		remapping NameMap
		name      string
		want      string
	}{
		// relative rules resolve in the node's namespace on both sides
		{"/", NameMap{"camera/image_raw": "cam0/image"}, "camera/image_raw", "/cam0/image"},
		{"/robot", NameMap{"camera/image_raw": "cam0/image"}, "/robot/camera/image_raw", "/robot/cam0/image"},
		{"/robot", NameMap{"/camera/image_raw": "/cam0/image"}, "/camera/image_raw", "/cam0/image"},
		{"/robot", NameMap{"/camera/image_raw": "cam0/image"}, "/camera/image_raw", "/robot/cam0/image"},
		{"/", NameMap{"~pose_cam": "/slam/pose"}, "~pose_cam", "/slam/pose"},
		// unmatched names pass through resolved
		{"/robot", NameMap{"camera/image_raw": "cam0/image"}, "~pose_cam", "/robot/slam/pose_cam"},
	}
	for _, c := range cases {
		r := newNameResolver(c.namespace, "slam", c.remapping)
		if got := r.remap(c.name); got != c.want {
			t.Errorf("%v in %s: remap(%q) = %q, want %q", c.remapping, c.namespace, c.name, got, c.want)
		}
	}
}

func TestQualifyNodeName(t *testing.T) {
	ns, name, err := qualifyNodeName("/orb_slam_2_ros_node")
	if err != nil || ns != "/" || name != "orb_slam_2_ros_node" {
		t.Error(ns, name, err)
	}
	ns, name, err = qualifyNodeName("/robot/slam")
	if err != nil || ns != "/robot" || name != "slam" {
		t.Error(ns, name, err)
	}
	for _, bad := range []string{"", "~private", "///"} {
		if _, _, err := qualifyNodeName(bad); err == nil {
			t.Errorf("node name %q accepted", bad)
		}
	}
}

func TestProcessArguments(t *testing.T) {
	mapping, params, specials, rest := processArguments([]string{
		"/opt/ros/lib/orb_slam_2_ros_node",
		"camera/image_raw:=/cam0/image_raw",
		"_interface_type:=stereo",
		"__master:=http://localhost:11311",
		"__name:=orb",
		"--verbose",
	})
	if diff := cmp.Diff(NameMap{"camera/image_raw": "/cam0/image_raw"}, mapping); diff != "" {
		t.Errorf("mapping (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff(NameMap{"interface_type": "stereo"}, params); diff != "" {
		t.Errorf("params (-want +got)\n%s", diff)
	}
	if specials["__master"] != "http://localhost:11311" || specials["__name"] != "orb" {
		t.Error(specials)
	}
	if diff := cmp.Diff([]string{"/opt/ros/lib/orb_slam_2_ros_node", "--verbose"}, rest); diff != "" {
		t.Errorf("rest (-want +got)\n%s", diff)
	}
}
