// Package log writes structured logs of the wall to a daily file under
// where.Logs. Until Setup enables it, everything is discarded.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/filesystem"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/where"
)

// Fields is a set of structured key/value pairs attached to an entry.
type Fields = logrus.Fields

var current atomic.Pointer[logrus.Logger]

func init() {
	current.Store(discard())
}

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Setup opens today's log file and applies logs.level and logs.json.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		current.Store(discard())
		return nil
	}

	f, err := File(where.Logs(), time.Now())
	if err != nil {
		return err
	}

	current.Store(New(f, viper.GetString(key.LogsLevel), viper.GetBool(key.LogsJson)))
	return nil
}

// File opens the log file of day in dir for appending.
func File(dir string, day time.Time) (io.Writer, error) {
	path := filepath.Join(dir, day.Format(time.DateOnly)+".log")

	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// New returns a logger writing to w. Unknown levels fall back to info.
func New(w io.Writer, level string, json bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return l
}

// Use replaces the active logger.
func Use(l *logrus.Logger) {
	current.Store(l)
}

// With returns an entry carrying fields.
func With(fields Fields) *logrus.Entry {
	return current.Load().WithFields(fields)
}

func Error(args ...any)                 { current.Load().Error(args...) }
func Errorf(format string, args ...any) { current.Load().Errorf(format, args...) }
func Warn(args ...any)                  { current.Load().Warn(args...) }
func Warnf(format string, args ...any)  { current.Load().Warnf(format, args...) }
func Info(args ...any)                  { current.Load().Info(args...) }
func Infof(format string, args ...any)  { current.Load().Infof(format, args...) }
func Debugf(format string, args ...any) { current.Load().Debugf(format, args...) }
