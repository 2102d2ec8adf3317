// Package logging provides the levelled structured logger used across the
// service. Output is JSON, one line per event.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level controls the minimum severity that gets emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a single structured attribute attached to a log event.
type Field struct {
	Key   string
	Value interface{}
}

// WithField builds a single structured attribute.
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// WithFields flattens a map into attributes. Ordering follows map iteration
// and is not significant.
func WithFields(fields map[string]interface{}) []Field {
	out := make([]Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, Field{Key: k, Value: v})
	}
	return out
}

// Logger emits levelled JSON log lines.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger writing to stdout at the given level.
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a Logger writing to w, for tests.
func NewWithWriter(level Level, w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slogLevel(level),
	})
	return &Logger{slog: slog.New(handler)}
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.slog.Debug(msg, attrs(fields)...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.slog.Info(msg, attrs(fields)...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.slog.Warn(msg, attrs(fields)...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.slog.Error(msg, attrs(fields)...)
}

// attrs accepts both Field values and []Field slices so call sites can pass
// WithField and WithFields results interchangeably.
func attrs(fields []interface{}) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		switch v := f.(type) {
		case Field:
			out = append(out, slog.Any(v.Key, v.Value))
		case []Field:
			for _, inner := range v {
				out = append(out, slog.Any(inner.Key, inner.Value))
			}
		}
	}
	return out
}
