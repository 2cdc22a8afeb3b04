package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/hscode/internal/config"
	"github.com/Veraticus/hscode/internal/quota"
	"github.com/Veraticus/hscode/internal/storage"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

// initStorage opens the database and brings its schema up to date. With
// database.ephemeral set nothing is persisted.
func initStorage(ctx context.Context) (storage.KV, error) {
	if viper.GetBool("database.ephemeral") {
		slog.Debug("using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initTracker builds the daily quota tracker over store.
func initTracker(store quota.Store) (*quota.Tracker, error) {
	cfg, err := config.LoadQuotaConfig()
	if err != nil {
		return nil, err
	}
	return quota.NewTracker(store, cfg, slog.Default()), nil
}

// isInteractive reports whether f is attached to a terminal.
func isInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
