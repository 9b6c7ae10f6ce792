// Package logger builds the root slog logger for the process.
package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Production emits JSON for log shipping;
// everything else gets the text handler.
func New(env string) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With("service", "enrollsvc")
}
