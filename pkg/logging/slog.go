package logging

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/lmittmann/tint"
)

// SlogLogger adapts a slog handler to Logger
type SlogLogger struct {
	logger *slog.Logger
	closer io.Closer
}

// NewSlogLogger wraps a handler. closer, if set, is closed by Close.
func NewSlogLogger(handler slog.Handler, closer io.Closer) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler), closer: closer}
}

// NewConsoleLogger writes colourised, human readable lines to w
func NewConsoleLogger(w io.Writer, level Level, noColor bool) *SlogLogger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return NewSlogLogger(handler, nil)
}

// Debug logs a debug message
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs(fields)...)
}

// Info logs an info message
func (l *SlogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs(fields)...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs(fields)...)
}

// Error logs an error message
func (l *SlogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	a := attrs(fields)
	if err != nil {
		a = append(a, slog.Any("error", err))
	}
	l.logger.LogAttrs(ctx, slog.LevelError, msg, a...)
}

// WithFields returns a logger with additional fields
func (l *SlogLogger) WithFields(fields Fields) Logger {
	a := attrs(fields)
	args := make([]any, len(a))
	for i := range a {
		args[i] = a[i]
	}
	return &SlogLogger{logger: l.logger.With(args...), closer: l.closer}
}

// Close closes the underlying writer if there is one
func (l *SlogLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// attrs converts fields into attributes in key order
func attrs(fields Fields) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}
