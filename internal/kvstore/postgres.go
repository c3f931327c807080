package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDurable implements Durable over a PostgreSQL kv_entries table
// (see db/migrations). The value column is jsonb, so only valid JSON may
// be stored; KV always hands this tier JSON-serialized data.
type PostgresDurable struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresDurable creates a PostgresDurable over an existing pool. The
// pool's lifecycle stays with the caller. logger may be nil (slog.Default()).
func NewPostgresDurable(pool *pgxpool.Pool, logger *slog.Logger) *PostgresDurable {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDurable{pool: pool, logger: logger}
}

// Get returns the value for key, or found=false when no row exists.
func (p *PostgresDurable) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query kv_entries: %w", err)
	}
	return value, true, nil
}

// Set upserts the value for key.
func (p *PostgresDurable) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kv_entries: %w", err)
	}
	return nil
}

// Delete removes the row for key and reports whether it existed.
func (p *PostgresDurable) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM kv_entries WHERE key = $1`, key,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete from kv_entries: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
