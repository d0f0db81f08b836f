package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite stores each key as one row of the kv_slots table.
// The table is created by database.Migrate.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a KV on top of an open sqlite database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Get reads the value of a slot.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_slots WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv: failed to read slot %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put writes the value of a slot, creating it if needed.
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("kv: failed to write slot %s: %w", key, err)
	}
	return nil
}

// Delete removes a slot.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("kv: failed to delete slot %s: %w", key, err)
	}
	return nil
}
