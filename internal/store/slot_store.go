package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SlotStore keeps opaque values under namespaced keys. Each slot is written
// and deleted as a whole; there are no partial updates.
type SlotStore struct {
	db *sql.DB
}

func NewSlotStore(db *sql.DB) *SlotStore {
	return &SlotStore{db: db}
}

// Get returns the value stored under key. found is false when the slot is
// empty.
func (s *SlotStore) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT value FROM slots WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}

	return value, true, nil
}

// Put replaces the value stored under key.
func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}

	return nil
}

// Delete removes the slot. Deleting an empty slot is not an error.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM slots WHERE key = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}

	return nil
}
