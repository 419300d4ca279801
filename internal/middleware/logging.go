package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/sipico/netinv/internal/logging"
)

// maxLoggedBody caps how much of a body the debug log keeps.
const maxLoggedBody = 4096

// AccessLog writes one Info line per request after it completes.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.statusCode,
				"bytes", rec.size,
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// HTTPLogging logs masked request and response headers and bodies. It does
// nothing unless the logger is enabled for Debug.
func HTTPLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}

			var reqBody []byte
			if r.Body != nil {
				var err error
				reqBody, err = io.ReadAll(r.Body)
				var replay io.Reader = bytes.NewReader(reqBody)
				if err != nil {
					logger.Debug("failed to read request body", "error", err)
					// The handler sees the same error after the bytes read so far.
					replay = io.MultiReader(replay, errReader{err})
				}
				r.Body = io.NopCloser(replay)
			}
			logger.Debug("http request",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"headers", logging.MaskHeaders(r.Header),
				"body", describeBody(reqBody),
			)

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK, body: new(bytes.Buffer)}
			next.ServeHTTP(rec, r)

			logger.Debug("http response",
				"request_id", GetRequestID(r.Context()),
				"status", rec.statusCode,
				"headers", logging.MaskHeaders(rec.Header()),
				"body", describeBody(rec.body.Bytes()),
			)
		})
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func describeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !utf8.Valid(body) {
		return logging.FormatBinaryData(body)
	}
	masked := logging.MaskJSONBody(body)
	if len(masked) > maxLoggedBody {
		return string(masked[:maxLoggedBody]) + "...(truncated)"
	}
	return string(masked)
}

// responseRecorder captures the status, size and optionally the body.
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	size        int
	body        *bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	if r.body != nil {
		r.body.Write(b)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}
