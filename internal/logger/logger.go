package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/ml-interface/internal/config"
)

// Setup configures the global slog logger based on environment.
// Logs go to stderr; stdout carries the generated reply.
func Setup(cfg *config.Config) *slog.Logger {
	return New(cfg, os.Stderr)
}

// New builds a logger writing to w and sets it as the default.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level(),
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// WithInvocationID tags every line written during one CLI invocation.
func WithInvocationID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("invocation_id", id)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
