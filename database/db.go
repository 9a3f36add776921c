package database

import (
	"context"
	"devicelog/config"
	"devicelog/models"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 10 * time.Second

type DB struct {
	Pool         *pgxpool.Pool
	logger       *zap.Logger
	queryTimeout time.Duration
}

// Connect opens a pgx pool for cfg.URL and verifies it with a ping.
// Every store call is bounded by cfg.QueryTimeout.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	logger.Info("database connection established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Duration("query_timeout", timeout))

	return &DB{Pool: pool, logger: logger, queryTimeout: timeout}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
	db.logger.Info("database connection closed")
}

// queryCtx bounds a single store call with the configured query timeout.
func (db *DB) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

func storeError(op string, err error) error {
	return &models.StoreError{Op: op, Err: err}
}
