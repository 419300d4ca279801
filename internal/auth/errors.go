package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown user, an inactive
	// account or a wrong password, without saying which.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrRateLimited is returned when a source address has too many recent
	// login attempts.
	ErrRateLimited = errors.New("too many login attempts")

	// ErrUnauthenticated is returned when a request carries no usable session.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSessionExpired is returned for a well-formed token older than its max age.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalid is returned for a tampered or malformed token.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrWeakSecret is returned when the session signing key is too short.
	ErrWeakSecret = errors.New("session secret must be at least 32 bytes")
)
