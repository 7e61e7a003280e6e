package slam

import (
	"bytes"
	"io/ioutil"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// yamlDirective heads OpenCV FileStorage files; yaml.v3 rejects it.
const yamlDirective = "%YAML:1.0"

// OpenCV FileStorage accepts "key:value" with no space after the colon;
// ORB_SLAM2's shipped files use it for matrix data and viewer keys.
var unspacedKey = regexp.MustCompile(`(?m)^([ \t]*[A-Za-z_][\w.]*):([^\s])`)

// Settings is the part of an ORB_SLAM2 settings file the node checks
// before starting the engine. The engine reads the file itself.
type Settings struct {
	Fx     float64 `yaml:"Camera.fx"`
	Fy     float64 `yaml:"Camera.fy"`
	Cx     float64 `yaml:"Camera.cx"`
	Cy     float64 `yaml:"Camera.cy"`
	K1     float64 `yaml:"Camera.k1"`
	K2     float64 `yaml:"Camera.k2"`
	P1     float64 `yaml:"Camera.p1"`
	P2     float64 `yaml:"Camera.p2"`
	K3     float64 `yaml:"Camera.k3,omitempty"`
	Width  int     `yaml:"Camera.width,omitempty"`
	Height int     `yaml:"Camera.height,omitempty"`
	FPS    float64 `yaml:"Camera.fps"`
	// Bf is the stereo baseline times fx.
	Bf             float64 `yaml:"Camera.bf,omitempty"`
	RGB            int     `yaml:"Camera.RGB"`
	ThDepth        float64 `yaml:"ThDepth,omitempty"`
	DepthMapFactor float64 `yaml:"DepthMapFactor,omitempty"`

	NFeatures   int     `yaml:"ORBextractor.nFeatures"`
	ScaleFactor float64 `yaml:"ORBextractor.scaleFactor"`
	NLevels     int     `yaml:"ORBextractor.nLevels"`
	IniThFAST   int     `yaml:"ORBextractor.iniThFAST"`
	MinThFAST   int     `yaml:"ORBextractor.minThFAST"`
}

// ParseSettings decodes settings file contents.
func ParseSettings(data []byte) (*Settings, error) {
	data = bytes.TrimPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte(yamlDirective))
	data = unspacedKey.ReplaceAll(data, []byte("$1: $2"))
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}
	return &s, nil
}

// LoadSettings reads and decodes the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading settings")
	}
	s, err := ParseSettings(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// WriteFile stores s in the format the engine reads, directive included.
func (s *Settings) WriteFile(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshaling settings")
	}
	out := append([]byte(yamlDirective+"\n---\n"), data...)
	return ioutil.WriteFile(path, out, os.FileMode(0644))
}

// Validate checks the values the sensor type depends on and fills in
// defaults the engine would assume.
func (s *Settings) Validate(sensor SensorType) error {
	if s.Fx <= 0 || s.Fy <= 0 {
		return errors.Errorf("focal length must be positive, got fx=%v fy=%v", s.Fx, s.Fy)
	}
	if s.Cx <= 0 || s.Cy <= 0 {
		return errors.Errorf("principal point must be positive, got cx=%v cy=%v", s.Cx, s.Cy)
	}
	if s.FPS <= 0 {
		s.FPS = 30
	}
	if sensor == Stereo || sensor == RGBD {
		if s.Bf <= 0 {
			return errors.Errorf("%v needs a positive Camera.bf", sensor)
		}
	}
	if sensor == RGBD && s.DepthMapFactor == 0 {
		s.DepthMapFactor = 1
	}
	if s.NFeatures <= 0 {
		return errors.Errorf("ORBextractor.nFeatures must be positive, got %d", s.NFeatures)
	}
	return nil
}

// CameraMatrix returns the 3x3 pinhole intrinsics K.
func (s *Settings) CameraMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		s.Fx, 0, s.Cx,
		0, s.Fy, s.Cy,
		0, 0, 1,
	})
}

// Baseline is the stereo baseline in metres.
func (s *Settings) Baseline() float64 {
	if s.Fx == 0 {
		return 0
	}
	return s.Bf / s.Fx
}
