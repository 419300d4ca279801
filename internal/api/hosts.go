package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/storage"
)

// HostRequest is the body for POST /api/hosts and PUT /api/hosts/{id}.
type HostRequest struct {
	Name       string         `json:"name"`
	IPv4       string         `json:"ipv4"`
	IPv6       string         `json:"ipv6"`
	MAC        string         `json:"mac"`
	Note       string         `json:"note"`
	SSLEnabled inventory.Flag `json:"ssl_enabled"`
}

func (req HostRequest) toHost() *storage.Host {
	return &storage.Host{
		Name:       req.Name,
		IPv4:       req.IPv4,
		IPv6:       req.IPv6,
		MAC:        req.MAC,
		Note:       req.Note,
		SSLEnabled: bool(req.SSLEnabled),
	}
}

// HostResponse represents a host in API responses. Unset fields are null.
type HostResponse struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	IPv4       *string        `json:"ipv4"`
	IPv6       *string        `json:"ipv6"`
	MAC        *string        `json:"mac"`
	Note       *string        `json:"note"`
	SSLEnabled inventory.Flag `json:"ssl_enabled"`
}

func newHostResponse(h *storage.Host) HostResponse {
	return HostResponse{
		ID:         h.ID,
		Name:       h.Name,
		IPv4:       nullable(h.IPv4),
		IPv6:       nullable(h.IPv6),
		MAC:        nullable(h.MAC),
		Note:       nullable(h.Note),
		SSLEnabled: inventory.Flag(h.SSLEnabled),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseID reads the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// HandleListHosts returns every host ordered by IPv4
// GET /api/hosts
func (h *Handler) HandleListHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.hosts.List(r.Context())
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	resp := make([]HostResponse, len(hosts))
	for i, host := range hosts {
		resp[i] = newHostResponse(host)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetHost returns one host
// GET /api/hosts/{id}
func (h *Handler) HandleGetHost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	host, err := h.hosts.Get(r.Context(), id)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newHostResponse(host))
}

// HandleCreateHost adds a host
// POST /api/hosts
func (h *Handler) HandleCreateHost(w http.ResponseWriter, r *http.Request) {
	var req HostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	host := req.toHost()
	id, err := h.hosts.Create(r.Context(), host)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	host.ID = id
	writeJSON(w, http.StatusCreated, newHostResponse(host))
}

// HandleUpdateHost replaces a host's fields
// PUT /api/hosts/{id}
func (h *Handler) HandleUpdateHost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req HostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	host := req.toHost()
	found, err := h.hosts.Update(r.Context(), id, host)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	if !found {
		writeInventoryError(w, inventory.ErrNotFound)
		return
	}
	host.ID = id
	writeJSON(w, http.StatusOK, newHostResponse(host))
}

// HandleDeleteHost removes a host that nothing references
// DELETE /api/hosts/{id}
func (h *Handler) HandleDeleteHost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	found, err := h.hosts.Delete(r.Context(), id)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	if !found {
		writeInventoryError(w, inventory.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
