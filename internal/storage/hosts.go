package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const hostColumns = "id, name, ipv4, ipv6, mac, note, ssl_enabled"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHost(row rowScanner) (*Host, error) {
	var (
		h                     Host
		ipv4, ipv6, mac, note sql.NullString
	)
	if err := row.Scan(&h.ID, &h.Name, &ipv4, &ipv6, &mac, &note, &h.SSLEnabled); err != nil {
		return nil, err
	}
	h.IPv4 = ipv4.String
	h.IPv6 = ipv6.String
	h.MAC = mac.String
	h.Note = note.String
	return &h, nil
}

// ListHosts returns all hosts in insertion order.
// Returns an empty slice if there are none.
func (s *SQLiteStorage) ListHosts(ctx context.Context) ([]*Host, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+hostColumns+" FROM hosts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	hosts := make([]*Host, 0)
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hosts: %w", err)
	}

	return hosts, nil
}

// GetHost retrieves a host by ID.
// Returns ErrNotFound if the host doesn't exist.
func (s *SQLiteStorage) GetHost(ctx context.Context, id int64) (*Host, error) {
	h, err := scanHost(s.db.QueryRowContext(ctx, "SELECT "+hostColumns+" FROM hosts WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return h, nil
}

// CreateHost inserts a host and returns its ID.
// Returns ErrDuplicate if a host with the same name exists.
func (s *SQLiteStorage) CreateHost(ctx context.Context, h *Host) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO hosts (name, ipv4, ipv6, mac, note, ssl_enabled) VALUES (?, ?, ?, ?, ?, ?)",
			h.Name, nullString(h.IPv4), nullString(h.IPv6), nullString(h.MAC), nullString(h.Note), boolToInt(h.SSLEnabled))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create host: %w", err)
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

// UpdateHost replaces every mutable field of the host with the given ID.
// Returns false if no such host exists, ErrDuplicate on a name collision.
func (s *SQLiteStorage) UpdateHost(ctx context.Context, id int64, h *Host) (bool, error) {
	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE hosts SET name = ?, ipv4 = ?, ipv6 = ?, mac = ?, note = ?, ssl_enabled = ? WHERE id = ?",
			h.Name, nullString(h.IPv4), nullString(h.IPv6), nullString(h.MAC), nullString(h.Note), boolToInt(h.SSLEnabled), id)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to update host: %w", err)
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

// DeleteHost removes the host with the given ID.
// Returns false if no such host exists. Returns ErrHasDependents, leaving the
// host in place, when an alias targets its name or one of its addresses or a
// TXT record references it.
func (s *SQLiteStorage) DeleteHost(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		h, err := scanHost(tx.QueryRowContext(ctx, "SELECT "+hostColumns+" FROM hosts WHERE id = ?", id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to load host: %w", err)
		}

		var dependents int
		err = tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM aliases WHERE target IN (?, ?, ?)) +
				(SELECT COUNT(*) FROM txt_records WHERE host_id = ?)`,
			h.Name, nullString(h.IPv4), nullString(h.IPv6), id).Scan(&dependents)
		if err != nil {
			return fmt.Errorf("failed to count host dependents: %w", err)
		}
		if dependents > 0 {
			return ErrHasDependents
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM hosts WHERE id = ?", id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrHasDependents
			}
			return fmt.Errorf("failed to delete host: %w", err)
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
