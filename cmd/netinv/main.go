// Package main is the netinv server: host inventory, DNS/DHCP exports and the
// session-authenticated HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sipico/netinv/internal/api"
	"github.com/sipico/netinv/internal/auth"
	"github.com/sipico/netinv/internal/config"
	"github.com/sipico/netinv/internal/export"
	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/logging"
	"github.com/sipico/netinv/internal/metrics"
	"github.com/sipico/netinv/internal/storage"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// app holds the wired components of a running server.
type app struct {
	store   *storage.SQLiteStorage
	api     http.Handler
	metrics http.Handler
}

// newApp opens the store, seeds it and wires the HTTP handlers.
func newApp(ctx context.Context, cfg *config.Config, logLevel *slog.LevelVar, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	if err := metrics.Init(reg, version); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	store, err := storage.New(cfg.DatabasePath, cfg.BusyTimeout())
	if err != nil {
		return nil, err
	}

	if err := store.SeedSettings(ctx, map[string]string{
		storage.SettingDomain:       cfg.Domain,
		storage.SettingExternalIPv4: cfg.PublicIP,
	}); err != nil {
		_ = store.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	hasher := auth.BcryptHasher{}
	state, err := auth.SeedAdmin(ctx, store, hasher, auth.AdminSeed{
		Username:     cfg.AdminUser,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		Email:        cfg.AdminEmail,
	}, logger)
	if err != nil {
		_ = store.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	logger.Info("bootstrap state", "state", state.String())

	codec, err := auth.NewCodec([]byte(cfg.SessionSecret))
	if err != nil {
		_ = store.Close() //nolint:errcheck
		return nil, err
	}
	if cfg.SessionSecretGenerated {
		logger.Warn("SESSION_SECRET not set, using a random key; sessions will not survive a restart")
	}
	gate := auth.NewGate(store, hasher, codec, auth.NewLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow()), logger)

	exporter := export.New(export.Paths{
		DNSHosts:   cfg.DNSHostFile,
		DNSReverse: cfg.DNSReverseFile,
		DNSAliases: cfg.DNSAliasFile,
		DHCP4:      cfg.DHCP4HostFile,
		DHCP6:      cfg.DHCP6HostFile,
		Backup:     cfg.BackupFile,
	}, logger)

	handler := api.NewHandler(
		inventory.NewHostStore(store, logger),
		inventory.NewAliasStore(store, logger),
		store,
		gate,
		exporter,
		api.Options{
			Version:           version,
			LeasesFile:        cfg.DHCP4LeasesFile,
			SecureCookie:      cfg.SessionSecureCookie,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
			AdminHashLoaded:   cfg.AdminHashLoaded,
		},
		logLevel,
		logger,
	)

	return &app{
		store:   store,
		api:     handler.NewRouter(),
		metrics: metrics.HandlerFor(reg),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// serve runs the API and metrics listeners until ctx is canceled, then
// shuts both down gracefully.
func serve(ctx context.Context, a *app, cfg *config.Config, logger *slog.Logger) error {
	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           a.api,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics)
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listener %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "addr", srv.Addr, "error", err)
		}
	}
	return runErr
}

// doHealthCheck requests url and returns 0 for a 200 response, 1 otherwise.
// Used by the container HEALTHCHECK via "netinv health".
func doHealthCheck(url string) int {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 1
	}
	//nolint:errcheck // Response body close errors are unrecoverable in health check
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

// healthURL maps a listen address such as ":8000" to a local health URL.
func healthURL(listenAddr string) string {
	if len(listenAddr) > 0 && listenAddr[0] == ':' {
		listenAddr = "localhost" + listenAddr
	}
	return "http://" + listenAddr + "/api/health"
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := new(slog.LevelVar)
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logLevel.Set(level)
	logger := logging.New(os.Stdout, logLevel)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, logLevel, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	logger.Info("netinv starting", "version", version, "listen_addr", cfg.ListenAddr, "database", cfg.DatabasePath)
	return serve(ctx, a, cfg, logger)
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "health" {
		addr := os.Getenv("LISTEN_ADDR")
		if addr == "" {
			addr = ":8000"
		}
		os.Exit(doHealthCheck(healthURL(addr)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "netinv: %v\n", err)
		os.Exit(1)
	}
}
