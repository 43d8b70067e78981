// Package logger owns the process-wide slog setup and the request-scoped
// logger carried through context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// L is the process-wide logger until Init replaces it. The server derives a
// request-id tagged child from it per request; FromContext falls back to it.
var L = slog.Default()

type ctxKey struct{}

// Init builds the global logger from the configured level and format and
// installs it as the slog default. Format "json" selects JSON output,
// anything else logfmt-style text.
func Init(level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// WithContext attaches l to ctx. The server does this once per request with a
// request-id tagged child of L.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or L when ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return L
}

// Error logs on the global logger; for paths that run before any request or
// dependency wiring exists (startup, migrations).
func Error(msg string, args ...any) { L.Error(msg, args...) }

func parseLevel(level string) slog.Level {
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
