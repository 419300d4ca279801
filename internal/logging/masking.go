package logging

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Redacted replaces masked values.
const Redacted = "[REDACTED]"

// sensitiveFields are JSON keys whose values never reach the logs.
var sensitiveFields = map[string]bool{
	"password":      true,
	"password_hash": true,
	"token":         true,
	"secret":        true,
}

// MaskSecret keeps the last four characters of long values and hides the rest.
func MaskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// MaskHeader redacts credential-bearing headers.
func MaskHeader(name, value string) string {
	switch strings.ToLower(name) {
	case "cookie", "set-cookie":
		return MaskCookie(value)
	case "authorization", "x-api-key":
		return MaskSecret(value)
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
		return Redacted
	}
	return value
}

// MaskCookie hides the value of the session cookie in a Cookie or
// Set-Cookie header while keeping the attributes readable.
func MaskCookie(header string) string {
	parts := strings.Split(header, ";")
	for i, part := range parts {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name != "session" {
			continue
		}
		prefix := ""
		if i > 0 {
			prefix = " "
		}
		parts[i] = prefix + name + "=" + MaskSecret(value)
	}
	return strings.Join(parts, ";")
}

// MaskHeaders flattens h into a loggable map with credentials masked.
func MaskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = MaskHeader(k, v[0])
		}
	}
	return out
}

// MaskJSONBody redacts sensitive fields at any depth of a JSON document.
// Bodies that are not JSON are returned unchanged.
func MaskJSONBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return body
	}
	out, err := json.Marshal(maskValue(doc))
	if err != nil {
		return body
	}
	return out
}

func maskValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if sensitiveFields[strings.ToLower(k)] {
				t[k] = Redacted
				continue
			}
			t[k] = maskValue(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = maskValue(t[i])
		}
		return t
	default:
		return v
	}
}

// FormatBinaryData describes a non-text payload by size.
func FormatBinaryData(data []byte) string {
	return fmt.Sprintf("[BINARY: %d bytes]", len(data))
}
