package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sipico/netinv/internal/inventory"
)

// Standard error codes for API responses.
const (
	// ErrCodeInvalidRequest indicates a malformed request body.
	ErrCodeInvalidRequest = "invalid_request"

	// ErrCodeValidation indicates a field failed validation.
	ErrCodeValidation = "validation_error"

	// ErrCodeInvalidCredentials indicates a failed login.
	ErrCodeInvalidCredentials = "invalid_credentials"

	// ErrCodeRateLimited indicates too many recent login attempts.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeConflict indicates a name is already taken.
	ErrCodeConflict = "conflict"

	// ErrCodeInUse indicates a host still has aliases or TXT records.
	ErrCodeInUse = "in_use"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for JSON APIs.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{Error: code, Message: message})
}

// WriteErrorWithHint writes a JSON error response with a hint for resolving the error.
func WriteErrorWithHint(w http.ResponseWriter, status int, code, message, hint string) {
	writeJSON(w, status, APIError{Error: code, Message: message, Hint: hint})
}

// writeInventoryError maps inventory errors onto HTTP responses. Storage
// failures were already logged by the store and are reported opaquely.
func writeInventoryError(w http.ResponseWriter, err error) {
	var vErr *inventory.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, APIError{
			Error:   ErrCodeValidation,
			Message: vErr.Error(),
			Field:   vErr.Field,
		})
	case errors.Is(err, inventory.ErrInUse):
		WriteErrorWithHint(w, http.StatusConflict, ErrCodeInUse,
			"host is referenced by other records",
			"Delete or retarget the aliases and TXT records pointing at this host first")
	case errors.Is(err, inventory.ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, "a record with this name already exists")
	case errors.Is(err, inventory.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "record not found")
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v. Unknown fields are ignored.
// Validation errors raised while decoding are returned as-is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var vErr *inventory.ValidationError
		if errors.As(err, &vErr) {
			writeInventoryError(w, vErr)
			return false
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}
