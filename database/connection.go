package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool pinned to UTC
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Fixture kickoff times are stored and compared in UTC
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Health reports whether the pool can still reach the database
func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
