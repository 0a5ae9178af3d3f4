package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// kvStore implements driven.KeyValueStore on the kv table.
type kvStore struct {
	store *Store
}

var _ driven.KeyValueStore = (*kvStore)(nil)

// Get retrieves the value stored under key.
func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	if err := s.store.checkOpen(); err != nil {
		return "", err
	}

	var value string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading key %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key with a single upsert.
func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *kvStore) Delete(ctx context.Context, key string) error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// ListKeys returns keys starting with prefix in ascending order.
func (s *kvStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := s.store.checkOpen(); err != nil {
		return nil, err
	}

	// instr is case-sensitive, unlike LIKE.
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE instr(key, ?) = 1 ORDER BY key", prefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *kvStore) Close() error {
	return s.store.Close()
}
