package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sipico/netinv/internal/metrics"
	"github.com/sipico/netinv/internal/storage"
)

// UserStore is the subset of storage the gate needs.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	RecordLoginSuccess(ctx context.Context, id int64) error
	RecordLoginFailure(ctx context.Context, id int64) error
}

// Gate verifies credentials, throttles login attempts and issues sessions.
type Gate struct {
	users   UserStore
	hasher  PasswordHasher
	codec   *Codec
	limiter *Limiter
	logger  *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewGate wires a Gate. A nil hasher means BcryptHasher with the default cost
// and a nil limiter means the default 5 attempts per 600s.
func NewGate(users UserStore, hasher PasswordHasher, codec *Codec, limiter *Limiter, logger *slog.Logger) *Gate {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if limiter == nil {
		limiter = NewLimiter(DefaultMaxAttempts, DefaultWindow)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		users:   users,
		hasher:  hasher,
		codec:   codec,
		limiter: limiter,
		logger:  logger,
	}
}

// VerifyLogin returns the user when username and password match an active
// account, and ErrInvalidCredentials otherwise.
func (g *Gate) VerifyLogin(ctx context.Context, username, password string) (*storage.User, error) {
	user, err := g.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		// Keep timing close to the existing-user path.
		_ = g.hasher.Compare(g.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := g.hasher.Compare(user.PasswordHash, password); err != nil {
		g.recordFailure(ctx, user)
		return nil, ErrInvalidCredentials
	}
	if user.Status != storage.UserActive {
		g.recordFailure(ctx, user)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login checks the rate limit for addr, verifies the credentials and
// returns a fresh session token.
func (g *Gate) Login(ctx context.Context, addr, username, password string) (string, *storage.User, error) {
	if !g.limiter.Allow(addr) {
		g.logger.Warn("login rate limited", "remote_addr", addr)
		metrics.RecordLogin("rate_limited")
		return "", nil, ErrRateLimited
	}

	user, err := g.VerifyLogin(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			g.logger.Info("login failed", "username", username, "remote_addr", addr)
			metrics.RecordLogin("invalid")
		} else {
			g.logger.Error("login error", "username", username, "error", err)
			metrics.RecordLogin("error")
		}
		return "", nil, err
	}

	g.limiter.Reset(addr)
	if err := g.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		g.logger.Warn("failed to record login", "user_id", user.ID, "error", err)
	}

	token, err := g.codec.Sign(user.Username)
	if err != nil {
		metrics.RecordLogin("error")
		return "", nil, err
	}
	g.logger.Info("login succeeded", "username", user.Username, "remote_addr", addr)
	metrics.RecordLogin("success")
	return token, user, nil
}

// Authenticate resolves a session token to an active user.
func (g *Gate) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	username, err := g.codec.Verify(token, SessionMaxAge)
	if err != nil {
		return nil, err
	}
	user, err := g.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Status != storage.UserActive {
		return nil, ErrSessionInvalid
	}
	return user, nil
}

// Renew signs a new token for username.
func (g *Gate) Renew(username string) (string, error) {
	return g.codec.Sign(username)
}

func (g *Gate) recordFailure(ctx context.Context, user *storage.User) {
	if err := g.users.RecordLoginFailure(ctx, user.ID); err != nil {
		g.logger.Warn("failed to record login failure", "user_id", user.ID, "error", err)
	}
}

func (g *Gate) dummy() string {
	g.dummyOnce.Do(func() {
		h, err := g.hasher.Hash("netinv-dummy-password")
		if err != nil {
			g.logger.Error("failed to build dummy hash", "error", err)
			return
		}
		g.dummyHash = h
	})
	return g.dummyHash
}
