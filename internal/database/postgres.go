package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liljb23/promotrack/internal/config"
	"go.uber.org/zap"
)

// Pool tuning for the documents workload: short point reads and single-row
// upserts, no long transactions. Connections recycle fast so a failed-over
// database is picked up within minutes.
const (
	pgConnLifetime   = 30 * time.Minute
	pgConnIdleTime   = 5 * time.Minute
	pgHealthInterval = 30 * time.Second
	pgConnectTimeout = 5 * time.Second
)

// PostgresDB owns the pgx pool behind the postgres document store.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresDB opens a connection pool and verifies it with a ping before
// handing it out.
func NewPostgresDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = pgConnLifetime
	poolCfg.MaxConnIdleTime = pgConnIdleTime
	poolCfg.HealthCheckPeriod = pgHealthInterval
	poolCfg.ConnConfig.ConnectTimeout = pgConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable: %w", err)
	}

	logger.Info("postgres document store ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
	)

	return &PostgresDB{Pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info("postgres pool closed")
	}
}

// Health reports whether the database answers a ping. Served through the
// health endpoint when postgres is the configured backend.
func (db *PostgresDB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
