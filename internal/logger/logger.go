// Package logger builds the service's logrus loggers.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a stdout logger at the given level. Production logs are JSON
// for ingestion; everywhere else they are human-readable text.
func NewLogger(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if production {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
		log.WithField("log_level", level).Warn("Unknown log level, using info")
	}
	log.SetLevel(parsed)

	return log
}
