package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ikolcov/learnit/internal/config"
)

// Open builds the storage selected by cfg.StoreDriver, wrapped in a redis
// cache when cfg.RedisURL is set.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Storage, error) {
	var s Storage
	switch cfg.StoreDriver {
	case config.DriverMemory:
		s = NewInMemoryStorage()
	case config.DriverMongo:
		mongoStorage, err := NewMongoStorage(ctx, cfg.MongoURL, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		s = mongoStorage
	case config.DriverPostgres:
		postgresStorage, err := NewPostgresStorage(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		s = postgresStorage
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	logger.Info("storage opened", "driver", cfg.StoreDriver)

	if cfg.RedisURL == "" {
		return s, nil
	}
	logger.Info("caching user posts in redis", "ttl", cfg.CacheTTL)
	return NewCachedStorage(cfg.RedisURL, cfg.CacheTTL, s, logger), nil
}
