package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipico/netinv/internal/storage"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRequireSessionMissingCookie(t *testing.T) {
	t.Parallel()
	g, _ := newTestGate(t, newFakeUsers())
	h := RequireSession(g, CookieOptions{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not be called")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hosts", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unauthorized", resp["error"])
	assert.Nil(t, sessionCookie(rec))
}

func TestRequireSessionExpired(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	users.add(t, "admin", "pw", storage.UserActive)
	g, clock := newTestGate(t, users)
	token, err := g.codec.Sign("admin")
	require.NoError(t, err)
	clock.Advance(SessionMaxAge + time.Minute)

	h := RequireSession(g, CookieOptions{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not be called")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/hosts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}

func TestRequireSessionRenewsCookie(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	users.add(t, "admin", "pw", storage.UserActive)
	g, clock := newTestGate(t, users)
	token, err := g.codec.Sign("admin")
	require.NoError(t, err)
	clock.Advance(23 * time.Hour)

	var seen *storage.User
	h := RequireSession(g, CookieOptions{Secure: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/hosts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.Username)

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.NotEqual(t, token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 86400, c.MaxAge)
	assert.Equal(t, "/", c.Path)

	// The renewed cookie is valid for another full day.
	clock.Advance(23 * time.Hour)
	_, err = g.Authenticate(req.Context(), c.Value)
	assert.NoError(t, err)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/domain", nil)
	req = req.WithContext(WithUser(req.Context(), &storage.User{Username: "ops"}))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = req.WithContext(WithUser(req.Context(), &storage.User{Username: "admin", IsAdmin: true}))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClearSessionCookie(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, CookieOptions{})
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}
