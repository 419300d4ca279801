package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const aliasColumns = "id, name, target, note, ssl_enabled"

func scanAlias(row rowScanner) (*Alias, error) {
	var (
		a    Alias
		note sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Target, &note, &a.SSLEnabled); err != nil {
		return nil, err
	}
	a.Note = note.String
	return &a, nil
}

// ListAliases returns all aliases ordered by target, then insertion order.
func (s *SQLiteStorage) ListAliases(ctx context.Context) ([]*Alias, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+aliasColumns+" FROM aliases ORDER BY target, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	aliases := make([]*Alias, 0)
	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aliases: %w", err)
	}

	return aliases, nil
}

// GetAlias retrieves an alias by ID.
// Returns ErrNotFound if the alias doesn't exist.
func (s *SQLiteStorage) GetAlias(ctx context.Context, id int64) (*Alias, error) {
	a, err := scanAlias(s.db.QueryRowContext(ctx, "SELECT "+aliasColumns+" FROM aliases WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}
	return a, nil
}

// CreateAlias inserts an alias and returns its ID.
// Returns ErrDuplicate if an alias with the same name exists.
func (s *SQLiteStorage) CreateAlias(ctx context.Context, a *Alias) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO aliases (name, target, note, ssl_enabled) VALUES (?, ?, ?, ?)",
			a.Name, a.Target, nullString(a.Note), boolToInt(a.SSLEnabled))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create alias: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get insert ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateAlias replaces every mutable field of the alias with the given ID.
func (s *SQLiteStorage) UpdateAlias(ctx context.Context, id int64, a *Alias) (bool, error) {
	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE aliases SET name = ?, target = ?, note = ?, ssl_enabled = ? WHERE id = ?",
			a.Name, a.Target, nullString(a.Note), boolToInt(a.SSLEnabled), id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to update alias: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		updated = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// DeleteAlias removes the alias with the given ID.
func (s *SQLiteStorage) DeleteAlias(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM aliases WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete alias: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
