// Package observability carries per-build log context (build id, mode,
// stage) through context.Context so every log line of a run can be
// correlated.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
	Mode    string
	Stage   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	lc := extractLogContext(ctx)
	lc.BuildID = buildID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithMode adds the build mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	lc := extractLogContext(ctx)
	lc.Mode = mode
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// GetContext returns the structured log context from ctx.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := make([]slog.Attr, 0, 3)
	if lc.BuildID != "" {
		attrs = append(attrs, logfields.BuildID(lc.BuildID))
	}
	if lc.Mode != "" {
		attrs = append(attrs, logfields.Mode(lc.Mode))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	all := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, level, msg, all...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}
