package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sipico/netinv/internal/export"
	"github.com/sipico/netinv/internal/storage"
)

// Reload result codes.
const (
	CodeDNSReloadOK     = "DNS_RELOAD_OK"
	CodeDNSReloadError  = "DNS_RELOAD_ERROR"
	CodeDHCPReloadOK    = "DHCP_RELOAD_OK"
	CodeDHCPReloadError = "DHCP_RELOAD_ERROR"
	CodeBackupOK        = "BACKUP_OK"
	CodeBackupError     = "BACKUP_ERROR"
)

// ResultResponse reports the outcome of an export or lookup operation.
type ResultResponse struct {
	Code    string         `json:"code"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func tookMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func (h *Handler) writeExportResult(w http.ResponseWriter, start time.Time, res *export.Result, err error, okCode, errCode, what string) {
	details := map[string]any{"took_ms": tookMS(start)}
	if err != nil {
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) {
			details["artifact"] = exportErr.Artifact
		}
		writeJSON(w, http.StatusInternalServerError, ResultResponse{
			Code:    errCode,
			Status:  "failure",
			Message: "Error writing " + what,
			Details: details,
		})
		return
	}
	details["files"] = nonNil(res.Files)
	writeJSON(w, http.StatusOK, ResultResponse{
		Code:    okCode,
		Status:  "success",
		Message: what + " written successfully",
		Details: details,
	})
}

// HandleDNSReload regenerates the DNS host, reverse and alias files
// POST /api/dns/reload
func (h *Handler) HandleDNSReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	hosts, err := h.hosts.List(ctx)
	if err != nil {
		h.writeExportResult(w, start, nil, err, CodeDNSReloadOK, CodeDNSReloadError, "DNS configuration")
		return
	}
	aliases, err := h.aliases.List(ctx)
	if err != nil {
		h.writeExportResult(w, start, nil, err, CodeDNSReloadOK, CodeDNSReloadError, "DNS configuration")
		return
	}
	domain, err := h.system.GetSetting(ctx, storage.SettingDomain)
	if err != nil {
		h.logger.Error("failed to read domain setting", "error", err)
		h.writeExportResult(w, start, nil, err, CodeDNSReloadOK, CodeDNSReloadError, "DNS configuration")
		return
	}

	res, err := h.exporter.DNS(ctx, hosts, aliases, domain)
	h.writeExportResult(w, start, res, err, CodeDNSReloadOK, CodeDNSReloadError, "DNS configuration")
}

// HandleDHCPReload regenerates the Kea reservation files
// POST /api/dhcp/reload
func (h *Handler) HandleDHCPReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hosts, err := h.hosts.List(r.Context())
	if err != nil {
		h.writeExportResult(w, start, nil, err, CodeDHCPReloadOK, CodeDHCPReloadError, "DHCP configuration")
		return
	}
	res, err := h.exporter.DHCP(r.Context(), hosts)
	h.writeExportResult(w, start, res, err, CodeDHCPReloadOK, CodeDHCPReloadError, "DHCP configuration")
}

// HandleBackup writes the NDJSON host backup
// POST /api/backup
func (h *Handler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hosts, err := h.hosts.List(r.Context())
	if err != nil {
		h.writeExportResult(w, start, nil, err, CodeBackupOK, CodeBackupError, "Backup")
		return
	}
	res, err := h.exporter.Backup(r.Context(), hosts)
	h.writeExportResult(w, start, res, err, CodeBackupOK, CodeBackupError, "Backup")
}
