package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware returns HTTP middleware for request metrics.
func Middleware(next http.Handler) http.Handler {
	if !Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			duration := time.Since(start).Seconds()

			// Normalize path to avoid high cardinality from codes
			path := normalizePath(r.URL.Path)

			mu.RLock()
			defer mu.RUnlock()
			if !enabled {
				return
			}
			httpRequestsTotal.WithLabelValues(
				r.Method,
				path,
				strconv.Itoa(rw.status),
			).Inc()

			httpDuration.WithLabelValues(
				r.Method,
				path,
			).Observe(duration)
		}()

		next.ServeHTTP(rw, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// WriteHeader captures status code.
func (rw *responseWriter) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// knownPaths are recorded verbatim.
var knownPaths = map[string]bool{
	"/health":                true,
	"/healthz":               true,
	"/readyz":                true,
	"/metrics":               true,
	"/api/v1/validate":       true,
	"/api/v1/validate/batch": true,
	"/api/v1/methods":        true,
	"/api/v1/checks":         true,
}

// normalizePath maps request paths onto a fixed label set. For example:
//
//	/api/v1/methods/52  -> /api/v1/methods/{code}
//	/wp-login.php       -> other
func normalizePath(path string) string {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "/"
	}
	if knownPaths[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/methods/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/v1/methods/{code}"
	}
	return "other"
}
