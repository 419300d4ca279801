package auth

import (
	"context"

	"github.com/sipico/netinv/internal/storage"
)

type ctxKey int

const (
	userKey ctxKey = iota // stores *storage.User
)

// WithUser binds the authenticated user to ctx.
func WithUser(ctx context.Context, u *storage.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *storage.User {
	if v := ctx.Value(userKey); v != nil {
		if u, ok := v.(*storage.User); ok {
			return u
		}
	}
	return nil
}

// IsAdminFromContext returns true if the authenticated user is an admin.
func IsAdminFromContext(ctx context.Context) bool {
	u := UserFromContext(ctx)
	return u != nil && u.IsAdmin
}
