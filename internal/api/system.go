package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/logging"
	"github.com/sipico/netinv/internal/storage"
)

// DatabaseHealth is the database section of the health report.
type DatabaseHealth struct {
	Status  string  `json:"status"`
	Version string  `json:"version,omitempty"`
	Tables  int     `json:"tables"`
	SizeMB  float64 `json:"size_mb"`
}

// HealthResponse is the body for GET /api/health.
type HealthResponse struct {
	Status    string         `json:"status"`
	LatencyMS float64        `json:"latency_ms"`
	Database  DatabaseHealth `json:"database"`
}

// HandleHealth checks database connectivity
// GET /api/health
// Returns 200 when the database answers, 503 otherwise
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: DatabaseHealth{Status: "ok"}}
	status := http.StatusOK

	if err := h.system.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unavailable", "error", err)
		resp.Status = "degraded"
		resp.Database.Status = "error"
		status = http.StatusServiceUnavailable
	} else if st, err := h.system.Stats(ctx); err != nil {
		h.logger.Warn("health check: stats unavailable", "error", err)
		resp.Status = "degraded"
		resp.Database.Status = "error"
		status = http.StatusServiceUnavailable
	} else {
		resp.Database.Version = st.Version
		resp.Database.Tables = st.Tables
		resp.Database.SizeMB = float64(st.SizeBytes*100/(1024*1024)) / 100
	}

	resp.LatencyMS = tookMS(start)
	writeJSON(w, status, resp)
}

// AboutResponse is the body for GET /api/about.
type AboutResponse struct {
	Version         string `json:"version"`
	Domain          string `json:"domain"`
	AdminHashLoaded bool   `json:"admin_hash_loaded"`
}

// HandleAbout reports the build version and configured domain
// GET /api/about
func (h *Handler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	domain, err := h.system.GetSetting(r.Context(), storage.SettingDomain)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.logger.Warn("failed to read domain setting", "error", err)
	}
	writeJSON(w, http.StatusOK, AboutResponse{
		Version:         h.opts.Version,
		Domain:          domain,
		AdminHashLoaded: h.opts.AdminHashLoaded,
	})
}

// SetLogLevelRequest is the request body for POST /api/loglevel
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes runtime log level
// POST /api/loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	level, err := logging.ParseLevel(req.Level)
	if err != nil || strings.TrimSpace(req.Level) == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest,
			"invalid level (must be: debug, info, warn, error)")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", level.String())
	writeJSON(w, http.StatusOK, map[string]string{"level": strings.ToLower(level.String())})
}

// SettingRequest is the body for PUT /api/settings/{key}.
type SettingRequest struct {
	Value string `json:"value"`
}

// SettingResponse is a single key/value setting.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// settingRules validate values per known key. Unknown keys are rejected.
var settingRules = map[string]inventory.FieldRule{
	storage.SettingDomain: {
		Field:    "value",
		Required: true,
		Check:    inventory.IsDNSName,
		Message:  "must be a valid DNS name",
	},
	storage.SettingExternalIPv4: {
		Field:    "value",
		Required: true,
		Check:    inventory.IsIPv4,
		Message:  "must be a valid IPv4 address",
	},
}

// HandleGetSetting returns one setting
// GET /api/settings/{key}
func (h *Handler) HandleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.system.GetSetting(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "setting not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to read setting", "key", key, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SettingResponse{Key: key, Value: value})
}

// HandleSetSetting creates or replaces one setting
// PUT /api/settings/{key}
func (h *Handler) HandleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rule, known := settingRules[key]
	if !known {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "unknown setting")
		return
	}
	var req SettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := (inventory.Rules{rule}).Validate(map[string]*string{"value": &req.Value}); err != nil {
		writeInventoryError(w, err)
		return
	}
	if err := h.system.SetSetting(r.Context(), key, req.Value); err != nil {
		h.logger.Error("failed to write setting", "key", key, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}
	h.logger.Info("setting changed", "key", key)
	writeJSON(w, http.StatusOK, SettingResponse{Key: key, Value: req.Value})
}
