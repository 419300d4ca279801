package api

import (
	"errors"
	"net/http"

	"github.com/sipico/netinv/internal/leases"
)

// LeasesResponse is the body for GET /api/dhcp/leases.
type LeasesResponse struct {
	Total int            `json:"total"`
	Items []leases.Lease `json:"items"`
}

// HandleDHCPLeases returns the current DHCPv4 leases
// GET /api/dhcp/leases
func (h *Handler) HandleDHCPLeases(w http.ResponseWriter, r *http.Request) {
	items, err := leases.ReadFile(h.opts.LeasesFile)
	if errors.Is(err, leases.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ResultResponse{
			Code:    "DHCP_LEASES_NOT_FOUND",
			Status:  "failure",
			Message: "DHCP leases file not found",
			Details: map[string]any{},
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to read DHCP leases", "path", h.opts.LeasesFile, "error", err)
		writeJSON(w, http.StatusInternalServerError, ResultResponse{
			Code:    "DHCP_LEASES_ERROR",
			Status:  "failure",
			Message: "Error reading DHCP leases",
			Details: map[string]any{},
		})
		return
	}
	writeJSON(w, http.StatusOK, LeasesResponse{Total: len(items), Items: items})
}
