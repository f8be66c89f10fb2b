package main

import (
	"context"
	"fmt"

	"recruitbot/internal/config"
	"recruitbot/internal/infrastructure/database"
	"recruitbot/internal/infrastructure/memory"
	"recruitbot/internal/ports/output"
	"recruitbot/pkg/logger"
)

// openStorage builds the repository selected by STORAGE_DRIVER. The returned
// func releases its connections.
func openStorage(ctx context.Context, cfg *config.Config) (output.EventRepository, func(), error) {
	log := logger.For("Storage").WithField("driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if cfg.AutoMigrate {
			if err := database.MigratePostgres(cfg.DatabaseURL); err != nil {
				return nil, nil, err
			}
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return database.NewEventRepository(pool), pool.Close, nil

	case config.DriverSQLite:
		if cfg.AutoMigrate {
			if err := database.MigrateSQLite(cfg.DBPath); err != nil {
				return nil, nil, err
			}
		}
		db, err := database.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return database.NewSQLiteEventRepository(db), func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("close sqlite failed")
			}
		}, nil

	case config.DriverMemory:
		log.Warn("in-memory storage: tickets are lost on restart")
		return memory.NewEventRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func migrateStorage(cfg *config.Config) error {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return database.MigratePostgres(cfg.DatabaseURL)
	case config.DriverSQLite:
		return database.MigrateSQLite(cfg.DBPath)
	}
	return fmt.Errorf("storage driver %q has no migrations", cfg.StorageDriver)
}
