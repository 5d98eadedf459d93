// Package storeopen picks the store implementation named by STORE_DRIVER.
package storeopen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/droneshop/internal/config"
	"github.com/Skotchmaster/droneshop/internal/store"
	"github.com/Skotchmaster/droneshop/internal/store/gormstore"
	"github.com/Skotchmaster/droneshop/internal/store/mongostore"
)

// Open connects to the configured store and prepares its schema or indexes.
func Open(ctx context.Context, cfg config.Config, l *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "mongo":
		ms, err := mongostore.Open(ctx, cfg.MongoURI, cfg.DBName, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx, l); err != nil {
			_ = ms.Close(ctx)
			return nil, err
		}
		return ms, nil
	case "postgres":
		repo, err := gormstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, repo)
	case "sqlite":
		repo, err := gormstore.OpenSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, repo)
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func migrated(ctx context.Context, repo *gormstore.GormRepo) (store.Store, error) {
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}
