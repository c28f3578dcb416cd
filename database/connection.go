package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "cardswap"
	idleTimeout     = 5 * time.Minute
)

// DB is the shared pgx pool behind every unit of work
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens the pool and fails fast when Postgres is unreachable
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	poolConfig, err := newPoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// newPoolConfig pins every session to UTC; trade deadlines are compared in the database
func newPoolConfig(databaseURL string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	params := poolConfig.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	params["application_name"] = applicationName
	poolConfig.MaxConnIdleTime = idleTimeout

	return poolConfig, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
