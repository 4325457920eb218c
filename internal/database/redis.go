package database

import (
	"context"
	"fmt"
	"time"

	"github.com/liljb23/promotrack/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDB owns the client behind the redis document store.
type RedisDB struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedisDB opens a client and verifies it with a ping. Timeouts are kept
// tight: the hot path through redis is the per-event HINCRBY, and a stalled
// increment should fail fast so the recorder can drop and move on.
func NewRedisDB(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     32,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	logger.Info("redis document store ready",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &RedisDB{Client: client, logger: logger}, nil
}

// Close releases the client.
func (r *RedisDB) Close() error {
	if r.Client == nil {
		return nil
	}
	r.logger.Info("redis client closed")
	return r.Client.Close()
}

// Health reports whether redis answers a ping. Served through the health
// endpoint when redis is the configured backend.
func (r *RedisDB) Health(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}
