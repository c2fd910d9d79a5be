// Package observability provides structured logging with trace correlation
// for the planner registry and selection engine.
package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// TracedLogger is a structured logger with automatic trace correlation.
// It wraps slog.Logger and adds the owning component name and OpenTelemetry
// trace correlation to every log entry.
type TracedLogger struct {
	logger    *slog.Logger
	component string
}

// NewTracedLogger creates a new TracedLogger with the specified handler
// and component name.
func NewTracedLogger(handler slog.Handler, component string) *TracedLogger {
	return &TracedLogger{
		logger:    slog.New(handler),
		component: component,
	}
}

// Named returns a copy of the logger scoped to a different component name.
// The underlying handler is shared.
func (l *TracedLogger) Named(component string) *TracedLogger {
	return &TracedLogger{
		logger:    l.logger,
		component: component,
	}
}

// Debug logs a debug-level message with automatic trace correlation.
func (l *TracedLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Debug(msg, args...)
}

// Info logs an info-level message with automatic trace correlation.
func (l *TracedLogger) Info(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Info(msg, args...)
}

// Warn logs a warning-level message with automatic trace correlation.
func (l *TracedLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Warn(msg, args...)
}

// Error logs an error-level message with automatic trace correlation.
func (l *TracedLogger) Error(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Error(msg, args...)
}

// WithContext creates a new slog.Logger with trace correlation fields added.
// Extracts trace_id and span_id from the OpenTelemetry span in the context
// and adds the component name to every log entry.
func (l *TracedLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.logger.With(slog.String("component", l.component))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		logger = logger.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return logger
}

// NewJSONHandler creates a new JSON log handler with the specified output
// and level. JSON format is intended for production deployments.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a new text log handler with the specified output
// and level. Text format is human-readable and useful for development.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NopLogger returns a TracedLogger that discards all output.
// Useful as a default when no logger is injected.
func NopLogger() *TracedLogger {
	return NewTracedLogger(slog.NewTextHandler(io.Discard, nil), "nop")
}
