package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// GetSetting returns the value stored under key.
// Returns ErrNotFound if the key is unset.
func (s *SQLiteStorage) GetSetting(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value.String, nil
}

// SetSetting inserts or replaces a setting.
func (s *SQLiteStorage) SetSetting(ctx context.Context, key, value string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value)
		if err != nil {
			return fmt.Errorf("failed to set setting %q: %w", key, err)
		}
		return nil
	})
}

// SeedSettings stores each value whose key is not yet present. Existing
// values are left untouched.
func (s *SQLiteStorage) SeedSettings(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)", k, values[k]); err != nil {
				return fmt.Errorf("failed to seed setting %q: %w", k, err)
			}
		}
		return nil
	})
}
