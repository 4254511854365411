package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines a standard interface for logging.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// SlogLogger is a wrapper around Go's structured logger.
type SlogLogger struct {
	*slog.Logger
}

// ParseLevel maps a level name onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new JSON logger on stdout at the specified level.
func NewLogger(level string) Logger {
	return New(os.Stdout, level)
}

// New creates a JSON logger writing to w.
func New(w io.Writer, level string) Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return &SlogLogger{slog.New(handler)}
}

// NewFileLogger logs to the given file, or to stdout when path is empty or
// "-". If the file cannot be opened it falls back to stdout and returns the
// open error alongside the usable logger.
func NewFileLogger(path, level string) (Logger, error) {
	if path == "" || path == "-" {
		return NewLogger(level), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return NewLogger(level), fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return New(f, level), nil
}

// Debugf logs a message at the debug level.
func (l *SlogLogger) Debugf(format string, v ...interface{}) {
	l.Debug(fmt.Sprintf(format, v...))
}

// Infof logs a message at the info level.
func (l *SlogLogger) Infof(format string, v ...interface{}) {
	l.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a message at the warn level.
func (l *SlogLogger) Warnf(format string, v ...interface{}) {
	l.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs a message at the error level.
func (l *SlogLogger) Errorf(format string, v ...interface{}) {
	l.Error(fmt.Sprintf(format, v...))
}

type nopLogger struct{}

// Nop returns a logger that drops everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
