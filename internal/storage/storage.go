package storage

import (
	"context"
)

// Storage defines the persistence operations used by the rest of netinv.
type Storage interface {
	// Host operations
	ListHosts(ctx context.Context) ([]*Host, error)
	GetHost(ctx context.Context, id int64) (*Host, error)
	CreateHost(ctx context.Context, h *Host) (int64, error)
	UpdateHost(ctx context.Context, id int64, h *Host) (bool, error)
	DeleteHost(ctx context.Context, id int64) (bool, error)

	// Alias operations
	ListAliases(ctx context.Context) ([]*Alias, error)
	GetAlias(ctx context.Context, id int64) (*Alias, error)
	CreateAlias(ctx context.Context, a *Alias) (int64, error)
	UpdateAlias(ctx context.Context, id int64, a *Alias) (bool, error)
	DeleteAlias(ctx context.Context, id int64) (bool, error)

	// User operations
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, u NewUser) (int64, error)
	HasUsers(ctx context.Context) (bool, error)
	RecordLoginSuccess(ctx context.Context, id int64) error
	RecordLoginFailure(ctx context.Context, id int64) error

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	SeedSettings(ctx context.Context, values map[string]string) error

	// Health
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Close() error
}

var _ Storage = (*SQLiteStorage)(nil)
