// Package util provides shared logging setup for diff_trades.
package util

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewLogger creates a structured JSON logger at the specified level, writing
// to stderr (stdout carries the discrepancy wire format and must stay clean
// of log lines). Supported levels: "debug", "info", "warn", "error". Defaults
// to "info" if the level string is not recognised. Every record carries a
// run_id shared across the process, so log lines from one invocation can be
// correlated even when several runs' output is interleaved downstream.
func NewLogger(level string) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slevel,
	})

	return slog.New(handler).With("run_id", uuid.NewString())
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
