package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/config"
	"github.com/unclebandit/crm-backend/internal/db"
)

// Open returns the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Backend, error) {
	log.Info("opening storage backend", zap.String("driver", cfg.StorageDriver))

	switch cfg.StorageDriver {
	case "memory":
		return NewMemoryBackend(), nil
	case "file":
		return NewFileBackend(cfg.StorageDir)
	case "postgres":
		conn, err := db.Open(ctx, cfg.Database.DSN(), log)
		if err != nil {
			return nil, err
		}
		b, err := NewPostgresBackend(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return b, nil
	case "redis":
		return NewRedisBackend(ctx, cfg.RedisURL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
