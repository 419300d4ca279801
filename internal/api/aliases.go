package api

import (
	"net/http"

	"github.com/sipico/netinv/internal/inventory"
	"github.com/sipico/netinv/internal/storage"
)

// AliasRequest is the body for POST /api/aliases and PUT /api/aliases/{id}.
type AliasRequest struct {
	Name       string         `json:"name"`
	Target     string         `json:"target"`
	Note       string         `json:"note"`
	SSLEnabled inventory.Flag `json:"ssl_enabled"`
}

// AliasResponse represents an alias in API responses.
type AliasResponse struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Target     string         `json:"target"`
	Note       *string        `json:"note"`
	SSLEnabled inventory.Flag `json:"ssl_enabled"`
}

func newAliasResponse(a *storage.Alias) AliasResponse {
	return AliasResponse{
		ID:         a.ID,
		Name:       a.Name,
		Target:     a.Target,
		Note:       nullable(a.Note),
		SSLEnabled: inventory.Flag(a.SSLEnabled),
	}
}

func (req AliasRequest) toAlias() *storage.Alias {
	return &storage.Alias{
		Name:       req.Name,
		Target:     req.Target,
		Note:       req.Note,
		SSLEnabled: bool(req.SSLEnabled),
	}
}

// HandleListAliases returns every alias
// GET /api/aliases
func (h *Handler) HandleListAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.aliases.List(r.Context())
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	resp := make([]AliasResponse, len(aliases))
	for i, a := range aliases {
		resp[i] = newAliasResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetAlias returns one alias
// GET /api/aliases/{id}
func (h *Handler) HandleGetAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	a, err := h.aliases.Get(r.Context(), id)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAliasResponse(a))
}

// HandleCreateAlias adds an alias
// POST /api/aliases
func (h *Handler) HandleCreateAlias(w http.ResponseWriter, r *http.Request) {
	var req AliasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a := req.toAlias()
	id, err := h.aliases.Create(r.Context(), a)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	a.ID = id
	writeJSON(w, http.StatusCreated, newAliasResponse(a))
}

// HandleUpdateAlias replaces an alias's fields
// PUT /api/aliases/{id}
func (h *Handler) HandleUpdateAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req AliasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a := req.toAlias()
	found, err := h.aliases.Update(r.Context(), id, a)
	if err != nil {
		writeInventoryError(w, err)
		return
	}
	if !found {
		writeInventoryError(w, inventory.ErrNotFound)
		return
	}
	a.ID = id
	writeJSON(w, http.StatusOK, newAliasResponse(a))
}

// HandleDeleteAlias removes an alias
// DELETE /api/aliases/{id}
func (h *Handler) HandleDeleteAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	found, err := h.aliases.Delete(r.Context(), id)
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
