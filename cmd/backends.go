package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/veilhq/veil/internal/config"
	"github.com/veilhq/veil/internal/kvstore"
)

// openKV assembles the KV store from configuration: the durable tier from
// storage_backend (PostgreSQL pool or SQLite file) and the cache tier from
// cache_backend (Redis, in-process memory, or none). The returned closer
// releases whatever connections were opened.
func openKV(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*kvstore.KV, func(), error) {
	var (
		durable kvstore.Durable
		closers []func()
	)

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		durable = kvstore.NewPostgresDurable(pool, logger.With("component", "kv-postgres"))

	case config.StorageSQLite:
		sqd, err := kvstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		closers = append(closers, func() { _ = sqd.Close() })
		durable = sqd

	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}

	var cache kvstore.CacheBackend
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closers = append(closers, func() { _ = client.Close() })
		cache = kvstore.NewRedisCache(client)
	case config.CacheMemory:
		cache = kvstore.NewMemoryCache()
	case config.CacheNone:
		cache = nil
	}

	kv := kvstore.New(durable, cache, logger.With("component", "kvstore"),
		kvstore.WithCacheTTL(cfg.CacheTTL()))

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return kv, closeAll, nil
}
