package persist

import (
	"context"
	"fmt"
	"log/slog"

	"ittycoon/internal/config"
)

// Open builds the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "memory":
		s = NewMemoryStore()
	case "file":
		s, err = NewFileStore(cfg.SaveDir)
	case "sqlite", "":
		s, err = NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		s, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	case "redis":
		s, err = NewRedisStore(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("snapshot store ready", "driver", cfg.Driver)
	return s, nil
}

func PolicyFromString(v string) VersionPolicy {
	if VersionPolicy(v) == PolicyReconcile {
		return PolicyReconcile
	}
	return PolicyDiscard
}
