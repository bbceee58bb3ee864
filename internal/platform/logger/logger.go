// Package logger builds the process-wide slog logger. Components receive
// child loggers via logger.With("component", ...) so log lines are
// attributable without per-package setup.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a logger configured from the given level and format.
// Unknown values fall back to info-level text logging.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

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
