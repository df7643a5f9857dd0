package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logger every command and package writes through.
// A nil *Logger discards everything.
type Logger struct {
	Debug bool

	entry *logrus.Entry
	file  *os.File
}

func NewLogger(debug bool) *Logger {
	return newLogger(debug, os.Stderr)
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return newLogger(false, io.Discard)
}

func newLogger(debug bool, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}

	return &Logger{Debug: debug, entry: logrus.NewEntry(l)}
}

// WithFile returns a logger that also appends to <dir>/<name>_<date>.log.
// The caller must Close it.
func (l *Logger) WithFile(dir, name string, now time.Time) (*Logger, error) {
	if l == nil {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, now.Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	base := l.entry.Logger
	fl := logrus.New()
	fl.SetOutput(io.MultiWriter(base.Out, f))
	fl.SetFormatter(base.Formatter)
	fl.SetLevel(base.GetLevel())

	entry := logrus.NewEntry(fl).WithFields(l.entry.Data)

	return &Logger{Debug: l.Debug, entry: entry, file: f}, nil
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a logger that tags every line with key=value.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{Debug: l.Debug, entry: l.entry.WithField(key, value)}
}

// Messages may carry a trailing newline out of habit; logrus adds its own.
func trim(format string) string {
	return strings.TrimRight(format, "\n")
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil {
		return
	}
	l.entry.Debugf(trim(format), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	if l == nil {
		return
	}
	l.entry.Infof(trim(format), args...)
}

func (l *Logger) Successf(format string, args ...any) {
	if l == nil {
		return
	}
	l.entry.WithField("status", "ok").Infof(trim(format), args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	l.entry.Warnf(trim(format), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		return
	}
	l.entry.Errorf(trim(format), args...)
}
