// Package logging builds the logrus logger shared by the CLI and the HTTP
// service.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options selects level, format and destination.
type Options struct {
	Level string // debug, info, warn, error; empty means info
	JSON  bool
	Out   io.Writer // defaults to os.Stderr
}

// New returns a logger configured from opts. An unknown level is an error.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	level := logrus.InfoLevel
	if opts.Level != "" {
		lv, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = lv
	}
	l.SetLevel(level)

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	return l, nil
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about logs use it.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
