package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sipico/netinv/internal/metrics"
)

// CookieOptions controls the session cookie attributes that vary by deployment.
type CookieOptions struct {
	Secure bool
}

// SetSessionCookie writes token as the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// RequireSession returns Chi-compatible middleware that admits requests
// carrying a valid session cookie. The cookie is re-signed on every admitted
// request, so an active user never hits the 24h limit.
func RequireSession(g *Gate, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				token = c.Value
			}

			user, err := g.Authenticate(r.Context(), token)
			if err != nil {
				reason, message := "invalid_session", "session invalid"
				switch {
				case errors.Is(err, ErrUnauthenticated):
					reason, message = "missing_session", "authentication required"
				case errors.Is(err, ErrSessionExpired):
					reason, message = "expired_session", "session expired"
				case !errors.Is(err, ErrSessionInvalid):
					g.logger.Error("session check failed", "error", err)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
					return
				}
				metrics.RecordAuthFailure(reason)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
				return
			}

			fresh, err := g.Renew(user.Username)
			if err != nil {
				g.logger.Error("failed to renew session", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			SetSessionCookie(w, fresh, opts)

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects non-admin users with 403. It must run after RequireSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			writeJSONError(w, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
