// Package logging builds the logrus logger shared by a casescan run.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New returns a logger writing to out (stderr when nil). format is "text"
// or "json"; an unknown level is an error.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(out)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{TimestampFormat: timestampFormat, FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", format)
	}

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	return log, nil
}

// WithRunID tags every entry with a fresh run id.
func WithRunID(log logrus.FieldLogger) (*logrus.Entry, string) {
	id := uuid.NewString()
	return log.WithField("run_id", id), id
}
