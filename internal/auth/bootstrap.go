package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sipico/netinv/internal/storage"
)

// BootstrapState reports what SeedAdmin found.
type BootstrapState int

const (
	// StateSeeded means the user table was empty and an admin was created.
	StateSeeded BootstrapState = iota

	// StateConfigured means users already existed and nothing was written.
	StateConfigured
)

// String returns the string representation of the bootstrap state
func (s BootstrapState) String() string {
	switch s {
	case StateSeeded:
		return "SEEDED"
	case StateConfigured:
		return "CONFIGURED"
	default:
		return "UNKNOWN"
	}
}

// Defaults applied by SeedAdmin.
const (
	DefaultAdminUser  = "admin"
	DefaultAdminEmail = "admin@example.com"
)

// ErrNoAdminSecret is returned when neither a password nor a hash is supplied.
var ErrNoAdminSecret = errors.New("admin password or password hash required")

// AdminStore is the subset of storage used for seeding.
type AdminStore interface {
	HasUsers(ctx context.Context) (bool, error)
	CreateUser(ctx context.Context, u storage.NewUser) (int64, error)
}

// AdminSeed describes the first admin account. PasswordHash takes precedence
// over Password.
type AdminSeed struct {
	Username     string
	Password     string
	PasswordHash string
	Email        string
}

// SeedAdmin creates the admin account when no users exist.
func SeedAdmin(ctx context.Context, store AdminStore, hasher PasswordHasher, seed AdminSeed, logger *slog.Logger) (BootstrapState, error) {
	if logger == nil {
		logger = slog.Default()
	}

	has, err := store.HasUsers(ctx)
	if err != nil {
		return StateConfigured, fmt.Errorf("failed to check users: %w", err)
	}
	if has {
		return StateConfigured, nil
	}

	hash := seed.PasswordHash
	if hash == "" {
		if seed.Password == "" {
			return StateSeeded, ErrNoAdminSecret
		}
		if hasher == nil {
			hasher = BcryptHasher{}
		}
		hash, err = hasher.Hash(seed.Password)
		if err != nil {
			return StateSeeded, err
		}
	}

	username := seed.Username
	if username == "" {
		username = DefaultAdminUser
	}
	email := seed.Email
	if email == "" {
		email = DefaultAdminEmail
	}

	id, err := store.CreateUser(ctx, storage.NewUser{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		IsAdmin:      true,
		Modules:      []string{"dns", "dhcp"},
	})
	if err != nil {
		return StateSeeded, fmt.Errorf("failed to create admin: %w", err)
	}

	logger.Info("admin user created", "username", username, "user_id", id, "from_hash", seed.PasswordHash != "")
	return StateSeeded, nil
}
