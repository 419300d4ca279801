// Package api exposes the inventory, exports and session endpoints over HTTP.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/sipico/netinv/internal/auth"
	"github.com/sipico/netinv/internal/export"
	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/storage"
)

// SystemStore is the storage subset used outside the inventory stores.
type SystemStore interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*storage.Stats, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Options holds deployment settings the handlers report or obey.
type Options struct {
	Version           string
	LeasesFile        string
	SecureCookie      bool
	TrustProxyHeaders bool
	AdminHashLoaded   bool
}

// Handler provides the HTTP endpoints.
type Handler struct {
	hosts    *inventory.Store[storage.Host]
	aliases  *inventory.Store[storage.Alias]
	system   SystemStore
	gate     *auth.Gate
	exporter *export.Exporter
	opts     Options
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// NewHandler creates a Handler.
func NewHandler(
	hosts *inventory.Store[storage.Host],
	aliases *inventory.Store[storage.Alias],
	system SystemStore,
	gate *auth.Gate,
	exporter *export.Exporter,
	opts Options,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	return &Handler{
		hosts:    hosts,
		aliases:  aliases,
		system:   system,
		gate:     gate,
		exporter: exporter,
		opts:     opts,
		logger:   logger,
		logLevel: logLevel,
	}
}

func (h *Handler) cookieOptions() auth.CookieOptions {
	return auth.CookieOptions{Secure: h.opts.SecureCookie}
}

// clientAddr returns the host part of RemoteAddr. When proxy headers are
// trusted, chi's RealIP middleware has already rewritten RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
