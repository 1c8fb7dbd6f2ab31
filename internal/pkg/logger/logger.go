// Package logger provides structured logging utilities.
// Diagnostics go to stderr so stdout stays reserved for command output.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with jstree-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stderr with the given level and format.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w. Format "json" selects the JSON
// handler; anything else selects text.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// WithFile returns a logger annotated with a source file path.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{Logger: l.With("file", path)}
}

// WithProject returns a logger annotated with a project name.
func (l *Logger) WithProject(project string) *Logger {
	return &Logger{Logger: l.With("project", project)}
}

// WithError returns a logger with error context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err.Error())}
}

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error", "text")
}
