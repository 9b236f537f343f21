package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the logger shared by every package of the sdk
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetLogLevel parses level ("debug", "info", ...) and applies it to Log
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}

// Component returns a log entry tagged with the given component name
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
