// Package logger builds the application's slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger initializes a slog logger with the given level and format
// ("json" or "text"). A nil output defaults to stderr so pipeline output on
// stdout stays machine-readable.
func NewLogger(level slog.Level, format string, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
