// Package logging configures structured JSON logging for every binary.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Init sets the global logrus formatter, output and level.
// Unknown levels fall back to info.
func Init(level string) {
	InitWithOutput(level, os.Stdout)
}

// InitWithOutput is Init writing to out.
func InitWithOutput(level string, out io.Writer) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// New returns an entry tagged with the service and environment.
func New(service, environment string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"service":     service,
		"environment": environment,
	})
}
