package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sipico/netinv/internal/auth"
)

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse describes the session's user.
type UserResponse struct {
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	IsAdmin     bool       `json:"is_admin"`
	Modules     []string   `json:"modules"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// HandleLogin verifies credentials and sets the session cookie
// POST /api/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.gate.Login(r.Context(), clientAddr(r), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		WriteErrorWithHint(w, http.StatusTooManyRequests, ErrCodeRateLimited,
			"too many login attempts", "Wait a few minutes before trying again")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
		return
	case err != nil:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	auth.SetSessionCookie(w, token, h.cookieOptions())
	writeJSON(w, http.StatusOK, UserResponse{
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		Modules:  nonNil(user.Modules),
	})
}

// HandleLogout clears the session cookie
// POST /api/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieOptions())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWhoami returns the authenticated user
// GET /api/whoami
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{
		Username:    user.Username,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
		Modules:     nonNil(user.Modules),
		LastLoginAt: user.LastLoginAt,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
