package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session cookie parameters.
const (
	SessionCookieName = "session"
	SessionMaxAge     = 24 * time.Hour
)

// Codec signs and verifies session tokens. A token is an HS256 JWT whose
// subject is the username and whose iat claim is the signing time.
//
// There is no replay protection beyond expiry: anyone holding an unexpired
// token is treated as its user.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec returns a Codec using key, which must be at least 32 bytes.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) < 32 {
		return nil, ErrWeakSecret
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Codec{key: k, now: time.Now}, nil
}

// Sign returns a token binding username to the current time.
func (c *Codec) Sign(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(c.now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Verify returns the username bound to token. It fails with
// ErrSessionExpired when the token is older than maxAge and with
// ErrSessionInvalid when the signature or structure is wrong.
func (c *Codec) Verify(token string, maxAge time.Duration) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrSessionInvalid
	}

	age := c.now().Sub(claims.IssuedAt.Time)
	if age < -time.Second {
		return "", ErrSessionInvalid
	}
	if age > maxAge {
		return "", ErrSessionExpired
	}
	return claims.Subject, nil
}

// IsExpired reports whether err came from an expired session.
func IsExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
