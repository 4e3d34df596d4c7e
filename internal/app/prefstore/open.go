package prefstore

import (
	"context"
	"fmt"

	"freequilt/internal/app/db"
	"freequilt/internal/configs"
	"freequilt/internal/pkg/logx"
)

// Open creates the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *configs.AppConfig) (Store, error) {
	switch cfg.StoreBackend {
	case configs.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logx.Info("Preference store ready", "backend", cfg.StoreBackend)
		return NewPostgresStore(pool), nil

	case configs.StoreRedis:
		store, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		logx.Info("Preference store ready", "backend", cfg.StoreBackend, "addr", cfg.RedisAddr)
		return store, nil

	case configs.StoreMemory, "":
		logx.Info("Preference store ready", "backend", configs.StoreMemory)
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}
