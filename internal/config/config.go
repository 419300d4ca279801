// Package config provides configuration loading and validation from an
// optional YAML file and environment variables.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sipico/netinv/internal/inventory"
)

// DefaultAdminPasswordHashFile is read when ADMIN_PASSWORD_HASH_FILE is unset.
// A missing file at this path is not an error.
const DefaultAdminPasswordHashFile = "/run/secrets/admin_password_hash"

// Config holds all application configuration.
type Config struct {
	LogLevel          string `yaml:"log_level"`           // debug, info, warn, error
	ListenAddr        string `yaml:"listen_addr"`         // API listener (e.g., ":8000")
	MetricsListenAddr string `yaml:"metrics_listen_addr"` // Prometheus listener; empty disables it

	DataPath      string `yaml:"data_path"`
	DatabasePath  string `yaml:"database_path"`
	DBBusyTimeout int    `yaml:"db_busy_timeout_ms"`

	Domain   string `yaml:"domain"`
	PublicIP string `yaml:"public_ip"`

	AdminUser         string `yaml:"admin_user"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	AdminEmail        string `yaml:"admin_email"`

	SessionSecret       string `yaml:"session_secret"`
	SessionSecureCookie bool   `yaml:"session_secure_cookie"`
	LoginMaxAttempts    int    `yaml:"login_max_attempts"`
	LoginWindowSeconds  int    `yaml:"login_window_seconds"`
	TrustProxyHeaders   bool   `yaml:"trust_proxy_headers"`

	DNSHostFile     string `yaml:"dns_host_file"`
	DNSReverseFile  string `yaml:"dns_reverse_file"`
	DNSAliasFile    string `yaml:"dns_alias_file"`
	DHCP4HostFile   string `yaml:"dhcp4_host_file"`
	DHCP6HostFile   string `yaml:"dhcp6_host_file"`
	DHCP4LeasesFile string `yaml:"dhcp4_leases_file"`
	BackupFile      string `yaml:"backup_file"`

	// Set by Load, not read from any source.
	AdminHashLoaded        bool `yaml:"-"`
	SessionSecretGenerated bool `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		LogLevel:           "info",
		ListenAddr:         ":8000",
		MetricsListenAddr:  "localhost:9090",
		DataPath:           "/data",
		DBBusyTimeout:      5000,
		Domain:             "example.com",
		PublicIP:           "127.0.0.1",
		AdminUser:          "admin",
		AdminPassword:      "admin",
		LoginMaxAttempts:   5,
		LoginWindowSeconds: 600,
		DNSReverseFile:     "/dns/etc/reverse/hosts.inc",
		DHCP4HostFile:      "/dhcp/etc/hosts-ipv4.json",
		DHCP6HostFile:      "/dhcp/etc/hosts-ipv6.json",
		DHCP4LeasesFile:    "/dhcp/lib/dhcp4.leases",
	}
}

// Load builds the configuration. Defaults are applied first, then the YAML
// file named by NETINV_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("NETINV_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.loadSecrets(); err != nil {
		return nil, err
	}
	cfg.derive()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":           &c.LogLevel,
		"LISTEN_ADDR":         &c.ListenAddr,
		"METRICS_LISTEN_ADDR": &c.MetricsListenAddr,
		"DATA_PATH":           &c.DataPath,
		"DATABASE_PATH":       &c.DatabasePath,
		"DOMAIN":              &c.Domain,
		"PUBLIC_IP":           &c.PublicIP,
		"ADMIN_USER":          &c.AdminUser,
		"ADMIN_PASSWORD":      &c.AdminPassword,
		"ADMIN_PASSWORD_HASH": &c.AdminPasswordHash,
		"ADMIN_EMAIL":         &c.AdminEmail,
		"SESSION_SECRET":      &c.SessionSecret,
		"DNS_HOST_FILE":       &c.DNSHostFile,
		"DNS_REVERSE_FILE":    &c.DNSReverseFile,
		"DNS_ALIAS_FILE":      &c.DNSAliasFile,
		"DHCP4_HOST_FILE":     &c.DHCP4HostFile,
		"DHCP6_HOST_FILE":     &c.DHCP6HostFile,
		"DHCP4_LEASES_FILE":   &c.DHCP4LeasesFile,
		"BACKUP_FILE":         &c.BackupFile,
	}
	for name, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_BUSY_TIMEOUT_MS":   &c.DBBusyTimeout,
		"LOGIN_MAX_ATTEMPTS":   &c.LoginMaxAttempts,
		"LOGIN_WINDOW_SECONDS": &c.LoginWindowSeconds,
	}
	for name, dst := range ints {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", name, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"SESSION_SECURE_COOKIE": &c.SessionSecureCookie,
		"TRUST_PROXY_HEADERS":   &c.TrustProxyHeaders,
	}
	for name, dst := range bools {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", name, err)
		}
		*dst = b
	}
	return nil
}

func (c *Config) loadSecrets() error {
	if path := os.Getenv("SESSION_SECRET_FILE"); path != "" {
		secret, err := readSecret(path)
		if err != nil {
			return fmt.Errorf("failed to read SESSION_SECRET_FILE: %w", err)
		}
		c.SessionSecret = secret
	}

	hashFile, explicit := os.LookupEnv("ADMIN_PASSWORD_HASH_FILE")
	if !explicit {
		hashFile = DefaultAdminPasswordHashFile
	}
	if c.AdminPasswordHash == "" && hashFile != "" {
		hash, err := readSecret(hashFile)
		switch {
		case err == nil:
			c.AdminPasswordHash = hash
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return fmt.Errorf("failed to read ADMIN_PASSWORD_HASH_FILE: %w", err)
		}
	}
	c.AdminHashLoaded = c.AdminPasswordHash != ""

	if c.SessionSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.SessionSecret = fmt.Sprintf("%x", buf)
		c.SessionSecretGenerated = true
	}
	return nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// derive fills paths that default relative to other settings.
func (c *Config) derive() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataPath, "database.db")
	}
	if c.BackupFile == "" {
		c.BackupFile = filepath.Join(c.DataPath, "hosts.json")
	}
	if c.DNSHostFile == "" {
		c.DNSHostFile = filepath.Join("/dns/etc", c.Domain, "hosts.inc")
	}
	if c.DNSAliasFile == "" {
		c.DNSAliasFile = filepath.Join("/dns/etc", c.Domain, "alias.inc")
	}
}

// BusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.DBBusyTimeout) * time.Millisecond
}

// LoginWindow returns the login rate limit window as a duration.
func (c *Config) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowSeconds) * time.Second
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.Domain == "" {
		return fmt.Errorf("DOMAIN is required")
	}
	if !inventory.IsDNSName(c.Domain) {
		return fmt.Errorf("DOMAIN must be a valid DNS name (got %q)", c.Domain)
	}
	if c.PublicIP != "" {
		if addr, err := netip.ParseAddr(c.PublicIP); err != nil || !addr.Is4() {
			return fmt.Errorf("PUBLIC_IP must be an IPv4 address (got %q)", c.PublicIP)
		}
	}
	if c.AdminUser == "" {
		return fmt.Errorf("ADMIN_USER is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if c.DBBusyTimeout < 0 {
		return fmt.Errorf("DB_BUSY_TIMEOUT_MS must not be negative")
	}
	if c.LoginMaxAttempts < 1 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.LoginWindowSeconds < 1 {
		return fmt.Errorf("LOGIN_WINDOW_SECONDS must be at least 1")
	}
	return nil
}
