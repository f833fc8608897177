// Package db provides PostgreSQL access for the persistent fetch cache.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS fetched_pages (
    id           UUID PRIMARY KEY,
    url          TEXT NOT NULL UNIQUE,
    parsed_text  TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    platform     TEXT NOT NULL DEFAULT 'unknown',
    fetched_at   TIMESTAMPTZ NOT NULL,
    expires_at   TIMESTAMPTZ NOT NULL,
    hit_count    INTEGER NOT NULL DEFAULT 0,
    last_hit_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_fetched_pages_expires_at ON fetched_pages (expires_at);
`

// EnsureSchema creates the fetch cache table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
