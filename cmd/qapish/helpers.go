package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qapish/qapish/internal/catalog"
	"github.com/qapish/qapish/internal/config"
	"github.com/qapish/qapish/internal/storage"
	"github.com/spf13/viper"
)

// loadSettings reads typed settings from the global viper instance.
func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildSource wires the configured catalog. The returned cleanup closes
// whatever was opened and is safe to call once.
func buildSource(ctx context.Context, settings *config.Settings) (catalog.Source, func(), error) {
	var (
		source  catalog.Source
		closers []func() error
	)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("Failed to close resource", "error", err)
			}
		}
	}

	switch settings.CatalogMode {
	case config.CatalogMemory:
		mem, err := catalog.NewDemo()
		if err != nil {
			return nil, cleanup, err
		}
		source = mem
		slog.Info("Using in-memory demo catalog")
	default:
		store, err := initStorage(ctx, settings)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, store.Close)
		source = catalog.NewPersisted(store)
		slog.Info("Using persisted catalog", "database", store.Path())
	}

	if settings.RedisURL != "" {
		cache, err := catalog.NewRedisCache(ctx, catalog.RedisConfig{URL: settings.RedisURL})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, cache.Close)
		source = catalog.NewCached(source, cache, settings.RedisTTL)
		slog.Info("Caching package listing in Redis", "ttl", settings.RedisTTL)
	}

	return source, cleanup, nil
}
