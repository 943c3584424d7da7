// Package logger builds the structured logger used by the command line tools.
package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

type contextKey string

const loggerKey contextKey = "logger"

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Anything else yields slog.LevelInfo and false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a JSON logger writing to w at the given level. An unknown level
// falls back to info and is reported once through the new logger.
func New(level string, w io.Writer) *slog.Logger {
	lvl, ok := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				// RFC3339 instead of the default nanosecond format
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if !ok {
		logger.Warn("invalid log level, defaulting to info", "configured_level", level)
	}
	return logger
}

// FromContext retrieves a logger from ctx, or slog.Default() when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ToContext embeds a slog.Logger into a context.Context.
func ToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
