package storage

import (
	"context"
	"fmt"
	"os"
)

// Ping verifies database connectivity with a lightweight "SELECT 1".
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	var result int
	err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("database ping returned unexpected result: %d", result)
	}
	return nil
}

// Stats describes the database for health reporting.
type Stats struct {
	Version   string
	Tables    int
	SizeBytes int64 // zero for in-memory databases
}

// Stats reports the SQLite library version, table count and file size.
func (s *SQLiteStorage) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&st.Version); err != nil {
		return nil, fmt.Errorf("failed to read sqlite version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'").Scan(&st.Tables); err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}
	if s.path != "" && s.path != ":memory:" {
		if fi, err := os.Stat(s.path); err == nil {
			st.SizeBytes = fi.Size()
		}
	}
	return &st, nil
}
