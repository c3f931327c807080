package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// SQLiteDurable implements Durable over an embedded SQLite database, for
// single-node deployments that run without PostgreSQL.
type SQLiteDurable struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at dbPath and
// initializes the kv_entries schema.
func OpenSQLite(dbPath string) (*SQLiteDurable, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writers block each other in SQLite; wait instead of failing fast.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteDurable{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteDurable) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or found=false when no row exists.
func (s *SQLiteDurable) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_entries WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query kv_entries: %w", err)
	}
	return value, true, nil
}

// Set upserts the value for key.
func (s *SQLiteDurable) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert kv_entries: %w", err)
	}
	return nil
}

// Delete removes the row for key and reports whether it existed.
func (s *SQLiteDurable) Delete(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM kv_entries WHERE key = ?", key,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete from kv_entries: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}
