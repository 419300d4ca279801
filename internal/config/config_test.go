package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"NETINV_CONFIG", "LOG_LEVEL", "LISTEN_ADDR", "METRICS_LISTEN_ADDR", "DATA_PATH",
	"DATABASE_PATH", "DB_BUSY_TIMEOUT_MS", "DOMAIN", "PUBLIC_IP", "ADMIN_USER",
	"ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "ADMIN_EMAIL", "SESSION_SECRET",
	"SESSION_SECRET_FILE", "SESSION_SECURE_COOKIE", "LOGIN_MAX_ATTEMPTS",
	"LOGIN_WINDOW_SECONDS", "TRUST_PROXY_HEADERS", "DNS_HOST_FILE", "DNS_REVERSE_FILE",
	"DNS_ALIAS_FILE", "DHCP4_HOST_FILE", "DHCP6_HOST_FILE", "DHCP4_LEASES_FILE",
	"BACKUP_FILE",
}

// clearEnv blanks every variable Load reads. An empty ADMIN_PASSWORD_HASH_FILE
// disables the default secret path.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
	}
	t.Setenv("ADMIN_PASSWORD_HASH_FILE", "")
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "localhost:9090", cfg.MetricsListenAddr)
	assert.Equal(t, "/data/database.db", cfg.DatabasePath)
	assert.Equal(t, "/data/hosts.json", cfg.BackupFile)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout())
	assert.Equal(t, "example.com", cfg.Domain)
	assert.Equal(t, "/dns/etc/example.com/hosts.inc", cfg.DNSHostFile)
	assert.Equal(t, "/dns/etc/example.com/alias.inc", cfg.DNSAliasFile)
	assert.Equal(t, "/dns/etc/reverse/hosts.inc", cfg.DNSReverseFile)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 600*time.Second, cfg.LoginWindow())
	assert.False(t, cfg.TrustProxyHeaders)
	assert.False(t, cfg.AdminHashLoaded)

	assert.True(t, cfg.SessionSecretGenerated)
	assert.Len(t, cfg.SessionSecret, 64)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DATA_PATH", "/srv/netinv")
	t.Setenv("DB_BUSY_TIMEOUT_MS", "250")
	t.Setenv("DOMAIN", "lan.example")
	t.Setenv("SESSION_SECRET", strings.Repeat("k", 32))
	t.Setenv("SESSION_SECURE_COOKIE", "true")
	t.Setenv("TRUST_PROXY_HEADERS", "1")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/srv/netinv/database.db", cfg.DatabasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.BusyTimeout())
	assert.Equal(t, "/dns/etc/lan.example/hosts.inc", cfg.DNSHostFile)
	assert.Equal(t, strings.Repeat("k", 32), cfg.SessionSecret)
	assert.False(t, cfg.SessionSecretGenerated)
	assert.True(t, cfg.SessionSecureCookie)
	assert.True(t, cfg.TrustProxyHeaders)
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name, value string
	}{
		{"DB_BUSY_TIMEOUT_MS", "soon"},
		{"LOGIN_WINDOW_SECONDS", "10m"},
		{"TRUST_PROXY_HEADERS", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.name, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "netinv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: home.arpa
listen_addr: ":7000"
login_max_attempts: 8
dhcp4_leases_file: /var/lib/kea/kea-leases4.csv
`), 0o600))
	t.Setenv("NETINV_CONFIG", path)
	t.Setenv("LISTEN_ADDR", ":7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "home.arpa", cfg.Domain)
	assert.Equal(t, ":7100", cfg.ListenAddr, "env wins over file")
	assert.Equal(t, 8, cfg.LoginMaxAttempts)
	assert.Equal(t, "/var/lib/kea/kea-leases4.csv", cfg.DHCP4LeasesFile)
	assert.Equal(t, "/dns/etc/home.arpa/hosts.inc", cfg.DNSHostFile)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "netinv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain: [unterminated"), 0o600))
	t.Setenv("NETINV_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_SecretFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "session_secret")
	hashPath := filepath.Join(dir, "admin_hash")
	require.NoError(t, os.WriteFile(secretPath, []byte(strings.Repeat("s", 40)+"\n"), 0o600))
	require.NoError(t, os.WriteFile(hashPath, []byte("$2a$12$abcdefghijklmnopqrstuv\n"), 0o600))
	t.Setenv("SESSION_SECRET_FILE", secretPath)
	t.Setenv("ADMIN_PASSWORD_HASH_FILE", hashPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("s", 40), cfg.SessionSecret)
	assert.Equal(t, "$2a$12$abcdefghijklmnopqrstuv", cfg.AdminPasswordHash)
	assert.True(t, cfg.AdminHashLoaded)
}

func TestLoad_MissingExplicitHashFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PASSWORD_HASH_FILE", filepath.Join(t.TempDir(), "absent"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaults()
		c.SessionSecret = strings.Repeat("x", 32)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"empty domain", func(c *Config) { c.Domain = "" }, "DOMAIN"},
		{"domain with newline", func(c *Config) { c.Domain = "lan.example\n@ IN NS x." }, "DOMAIN"},
		{"domain with path separator", func(c *Config) { c.Domain = "../etc" }, "DOMAIN"},
		{"ipv6 public ip", func(c *Config) { c.PublicIP = "::1" }, "PUBLIC_IP"},
		{"no admin secret", func(c *Config) { c.AdminPassword = "" }, "ADMIN_PASSWORD"},
		{"short session secret", func(c *Config) { c.SessionSecret = "short" }, "SESSION_SECRET"},
		{"zero attempts", func(c *Config) { c.LoginMaxAttempts = 0 }, "LOGIN_MAX_ATTEMPTS"},
		{"negative busy timeout", func(c *Config) { c.DBBusyTimeout = -1 }, "DB_BUSY_TIMEOUT_MS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
