package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sipico/netinv/internal/auth"
	"github.com/sipico/netinv/internal/metrics"
	"github.com/sipico/netinv/internal/middleware"
)

// NewRouter creates the API router.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	if h.opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBody))
	r.Use(middleware.HTTPLogging(h.logger))
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Get("/health", h.HandleHealth)
		r.Get("/about", h.HandleAbout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(h.gate, h.cookieOptions()))

			r.Get("/whoami", h.HandleWhoami)

			r.Get("/hosts", h.HandleListHosts)
			r.Post("/hosts", h.HandleCreateHost)
			r.Get("/hosts/{id}", h.HandleGetHost)
			r.Put("/hosts/{id}", h.HandleUpdateHost)
			r.Delete("/hosts/{id}", h.HandleDeleteHost)

			r.Get("/aliases", h.HandleListAliases)
			r.Post("/aliases", h.HandleCreateAlias)
			r.Get("/aliases/{id}", h.HandleGetAlias)
			r.Put("/aliases/{id}", h.HandleUpdateAlias)
			r.Delete("/aliases/{id}", h.HandleDeleteAlias)

			r.Post("/dns/reload", h.HandleDNSReload)
			r.Post("/dhcp/reload", h.HandleDHCPReload)
			r.Get("/dhcp/leases", h.HandleDHCPLeases)
			r.Post("/backup", h.HandleBackup)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/settings/{key}", h.HandleGetSetting)
				r.Put("/settings/{key}", h.HandleSetSetting)
				r.Post("/loglevel", h.HandleSetLogLevel)
			})
		})
	})

	return r
}
