package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sipico/netinv/internal/auth"
	"github.com/sipico/netinv/internal/export"
	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/storage"
)

const (
	adminPassword = "admin-pw"
	userPassword  = "user-pw"
)

type testEnv struct {
	store    *storage.SQLiteStorage
	router   chi.Router
	dir      string
	paths    export.Paths
	logLevel *slog.LevelVar
}

func newTestEnv(t *testing.T, mutate ...func(*export.Paths, *Options)) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := storage.New(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SeedSettings(ctx, map[string]string{
		storage.SettingDomain:       "lan.example",
		storage.SettingExternalIPv4: "203.0.113.10",
	}))

	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	_, err = auth.SeedAdmin(ctx, store, hasher, auth.AdminSeed{Password: adminPassword}, nil)
	require.NoError(t, err)
	userHash, err := hasher.Hash(userPassword)
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, storage.NewUser{Username: "ops", PasswordHash: userHash, Modules: []string{"dns"}})
	require.NoError(t, err)

	codec, err := auth.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	gate := auth.NewGate(store, hasher, codec, auth.NewLimiter(5, 600*time.Second), nil)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dns"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "kea"), 0o755))
	paths := export.Paths{
		DNSHosts:   filepath.Join(dir, "dns", "hosts.inc"),
		DNSReverse: filepath.Join(dir, "dns", "reverse.inc"),
		DNSAliases: filepath.Join(dir, "dns", "alias.inc"),
		DHCP4:      filepath.Join(dir, "kea", "hosts-ipv4.json"),
		DHCP6:      filepath.Join(dir, "kea", "hosts-ipv6.json"),
		Backup:     filepath.Join(dir, "hosts.json"),
	}
	opts := Options{
		Version:         "1.2.3",
		LeasesFile:      filepath.Join(dir, "dhcp4.leases"),
		AdminHashLoaded: false,
	}
	for _, m := range mutate {
		m(&paths, &opts)
	}

	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
	h := NewHandler(
		inventory.NewHostStore(store, logger),
		inventory.NewAliasStore(store, logger),
		store,
		gate,
		export.New(paths, logger),
		opts,
		logLevel,
		logger,
	)
	return &testEnv{store: store, router: h.NewRouter(), dir: dir, paths: paths, logLevel: logLevel}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		rdr = jsonBody(t, b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/login", LoginRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(buf)
}
