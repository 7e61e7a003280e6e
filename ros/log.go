package ros

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// DefaultLogger returns the process wide logger shared by nodes.
func DefaultLogger() *logrus.Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger
}

// NewLogger returns a new instance of a logger
func NewLogger() *logrus.Logger {
	return logrus.New()
}

// ParseLogLevel accepts the rosconsole level names as well as the logrus ones.
func ParseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "fatal":
		return logrus.FatalLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "log level %q", level)
	}
	return lvl, nil
}
