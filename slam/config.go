package slam

import (
	"os"

	"github.com/pkg/errors"
)

// Config is what an engine needs to start.
type Config struct {
	VocabularyPath string
	SettingsPath   string
	Sensor         SensorType
	// UseViewer opens the engine's own map viewer.
	UseViewer bool
}

// Validate checks that both files exist and are regular files.
func (c Config) Validate() error {
	if err := checkFile("vocabulary", c.VocabularyPath); err != nil {
		return err
	}
	return checkFile("settings", c.SettingsPath)
}

func checkFile(what, path string) error {
	if path == "" {
		return errors.Errorf("%s file path is empty", what)
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "%s file", what)
	}
	if info.IsDir() {
		return errors.Errorf("%s file %s is a directory", what, path)
	}
	return nil
}
