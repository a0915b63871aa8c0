package monitoring

import (
	"context"
	"io"
	"log/slog"
)

// Event types attached to every log entry under the "event" key.
const (
	EventCreate = "create"
	EventStart  = "start"
	EventAbort  = "abort"
	EventFetch  = "fetch"
	EventUpdate = "update"
	EventRetire = "retire"
	EventError  = "error"
	EventClose  = "close"
)

// Logger is a component scoped structured logger.
type Logger struct {
	l *slog.Logger
}

// NewLogger returns a logger that tags every entry with component. A nil
// base logger discards all output.
func NewLogger(component string, base *slog.Logger) *Logger {
	if base == nil {
		return Discard()
	}
	return &Logger{l: base.With(slog.String("component", component))}
}

// Discard returns a logger that drops every entry.
func Discard() *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// With returns a logger carrying the extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l: l.l.With(args...)}
}

// Enabled reports whether entries at level are emitted.
func (l *Logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.l.Enabled(ctx, level)
}

// Log writes one entry of the given event type.
func (l *Logger) Log(ctx context.Context, level slog.Level, eventType string, message string, args ...any) {
	if !l.l.Enabled(ctx, level) {
		return
	}
	l.l.Log(ctx, level, message, append([]any{slog.String("event", eventType)}, args...)...)
}
