package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/apl-diff/internal/common"
)

// OpenRegistry builds the task registry selected by cfg.Driver. The returned
// close func releases the backend and is never nil.
func OpenRegistry(ctx context.Context, cfg common.RegistryConfig, logger *slog.Logger) (TaskRepository, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", common.RegistryMemory:
		logger.Info("registry.opened", "driver", common.RegistryMemory)
		return NewMemoryTaskRepository(logger), func() {}, nil

	case common.RegistrySQLite:
		repo, err := OpenSQLite(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open sqlite registry: %w", err)
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error("registry.sqlite.close_failed", "error", err)
			}
		}, nil

	case common.RegistryPostgres:
		pool, err := Open(ctx, DefaultPoolConfig(cfg.DSN), logger)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open postgres registry: %w", err)
		}
		if err := HealthCheck(ctx, pool, 0, logger); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("ping postgres registry: %w", err)
		}
		repo := NewPostgresTaskRepository(pool, logger)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return repo, pool.Close, nil
	}
	return nil, func() {}, fmt.Errorf("unknown registry driver %q", cfg.Driver)
}
