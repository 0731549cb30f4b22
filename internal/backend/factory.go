// Package backend selects and assembles the record-store implementation
// from configuration.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/Vijay-1289/Expense-Tracker/internal/config"
	"github.com/Vijay-1289/Expense-Tracker/internal/storage"
	"github.com/Vijay-1289/Expense-Tracker/internal/store"
	"github.com/Vijay-1289/Expense-Tracker/internal/store/memory"
)

const (
	Memory = "memory"
	SQLite = "sqlite"
)

// CleanupFunc releases the backend's resources on shutdown.
type CleanupFunc func() error

// New builds the store named by cfg.DataBackend.
func New(cfg *config.Config) (store.Store, CleanupFunc, error) {
	switch cfg.DataBackend {
	case SQLite:
		repo, err := storage.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite backend: %w", err)
		}
		slog.Info("initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return repo, repo.Close, nil
	case Memory:
		slog.Info("initialized in-memory backend")
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend: %s", cfg.DataBackend)
	}
}
