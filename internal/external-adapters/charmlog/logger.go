// Package charmlog adapts github.com/charmbracelet/log to the domain
// Logger interface. The CLI wires this in; the core only sees the
// interface.
package charmlog

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/ochairo/cratebom/internal/domain/interfaces"
)

// Logger is a charmbracelet-backed structured logger
type Logger struct {
	inner *log.Logger
}

// New creates a logger writing to w. Verbose enables debug output.
func New(w io.Writer, verbose bool) *Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Logger{
		inner: log.NewWithOptions(w, log.Options{
			Prefix: "cratebom",
			Level:  level,
		}),
	}
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.inner.Debug(msg, keyvals(fields)...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.inner.Info(msg, keyvals(fields)...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.inner.Warn(msg, keyvals(fields)...)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.inner.Error(msg, keyvals(fields)...)
}

// keyvals flattens structured fields into charm's key/value form
func keyvals(fields []interfaces.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
