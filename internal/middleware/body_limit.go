package middleware

import "net/http"

// DefaultMaxBody bounds JSON request bodies.
const DefaultMaxBody = 1 << 20

// MaxBodySize caps request bodies at maxBytes; reads past the cap fail and
// the server answers 413.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
