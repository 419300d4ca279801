package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetUserByUsername retrieves a user by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var (
		u                                            User
		email, notes                                 sql.NullString
		modules, status                              string
		lastFailedAt, lastLoginAt, passwordChangedAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, is_admin, modules, status,
		       failed_attempts, last_failed_at, last_login_at, password_changed_at,
		       notes, created_at, updated_at
		FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &u.IsAdmin, &modules, &status,
			&u.FailedAttempts, &lastFailedAt, &lastLoginAt, &passwordChangedAt,
			&notes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal([]byte(modules), &u.Modules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal modules: %w", err)
	}
	u.Email = email.String
	u.Notes = notes.String
	u.Status = UserStatus(status)
	u.LastFailedAt = timePtr(lastFailedAt)
	u.LastLoginAt = timePtr(lastLoginAt)
	u.PasswordChangedAt = timePtr(passwordChangedAt)

	return &u, nil
}

// CreateUser inserts an active user whose audit timestamps are all set to the
// creation time. Returns ErrDuplicate if the username or email is taken.
func (s *SQLiteStorage) CreateUser(ctx context.Context, nu NewUser) (int64, error) {
	modules := nu.Modules
	if modules == nil {
		modules = []string{}
	}
	modulesJSON, err := json.Marshal(modules)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal modules: %w", err)
	}

	now := time.Now().UTC()
	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, email, is_admin, modules, status,
			                   password_changed_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nu.Username, nu.PasswordHash, nullString(nu.Email), boolToInt(nu.IsAdmin),
			string(modulesJSON), string(UserActive), now, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create user: %w", err)
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

// HasUsers reports whether at least one user exists.
func (s *SQLiteStorage) HasUsers(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}

// RecordLoginSuccess stamps last_login_at and clears the failure counter.
func (s *SQLiteStorage) RecordLoginSuccess(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return s.touchUser(ctx, id,
		"UPDATE users SET last_login_at = ?, failed_attempts = 0, updated_at = ? WHERE id = ?", now, now, id)
}

// RecordLoginFailure increments failed_attempts and stamps last_failed_at.
// The counter is advisory and never locks the account.
func (s *SQLiteStorage) RecordLoginFailure(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return s.touchUser(ctx, id,
		"UPDATE users SET failed_attempts = failed_attempts + 1, last_failed_at = ?, updated_at = ? WHERE id = ?", now, now, id)
}

func (s *SQLiteStorage) touchUser(ctx context.Context, id int64, query string, args ...any) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
