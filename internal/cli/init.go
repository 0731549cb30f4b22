// Package cli holds the shared process bootstrap used by cmd binaries:
// env loading, logging, config validation and shutdown signals.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Vijay-1289/Expense-Tracker/internal/config"
	applog "github.com/Vijay-1289/Expense-Tracker/internal/log"
)

// Bootstrap loads the optional .env file, installs the default logger
// and returns the validated configuration, exiting on invalid config.
func Bootstrap() (*config.Config, *slog.Logger) {
	_ = godotenv.Load()

	logger := applog.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
