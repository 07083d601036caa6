// Package log configures logrus for the player and proxies log calls to it.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var logger = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup directs log output to file at the given level. An empty file keeps
// logging discarded, which keeps the terminal UI clean.
func Setup(level, file string) error {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if file == "" {
		l.SetOutput(io.Discard)
		logger = l
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	logger = l
	return nil
}

// SetOutput replaces the log destination, mostly for tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// WithFields returns an entry carrying the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
