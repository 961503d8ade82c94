package logger

import (
	"log/slog"
	"os"
)

// New returns a structured logger tuned for the environment: JSON output for
// anything that is not development, human-readable text otherwise.
func New(environment string) *slog.Logger {
	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}
