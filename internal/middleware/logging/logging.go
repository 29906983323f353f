// Package logging provides structured HTTP request logging middleware.
package logging

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/kontocheck/internal/middleware/realip"
)

// responseWriter wraps http.ResponseWriter to capture status and bytes
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       int
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap returns the underlying ResponseWriter for middleware that need it
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type attrsKey struct{}

type attrs struct {
	mu   sync.Mutex
	list []slog.Attr
}

// Annotate attaches extra attributes to the request log line. Inner
// handlers use it for values only known after routing, such as the
// API key that authenticated the request. It is a no-op outside Middleware.
func Annotate(ctx context.Context, a ...slog.Attr) {
	if h, ok := ctx.Value(attrsKey{}).(*attrs); ok {
		h.mu.Lock()
		h.list = append(h.list, a...)
		h.mu.Unlock()
	}
}

// Middleware returns an HTTP middleware that logs one line per request with
// request_id, method, path, status, bytes, duration and client_ip.
// Server errors log at error level, client errors at warn. Paths in quiet
// log at debug, which keeps probe traffic out of production logs.
func Middleware(logger *slog.Logger, quiet ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			extra := &attrs{}
			r = r.WithContext(context.WithValue(r.Context(), attrsKey{}, extra))

			wrapped := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			defer func() {
				level := slog.LevelInfo
				switch {
				case wrapped.status >= 500:
					level = slog.LevelError
				case wrapped.status >= 400:
					level = slog.LevelWarn
				case skip[r.URL.Path]:
					level = slog.LevelDebug
				}

				fields := []slog.Attr{
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", wrapped.status),
					slog.Int("bytes", wrapped.bytes),
					slog.String("duration", time.Since(start).String()),
					slog.String("client_ip", realip.GetClientIP(r)),
				}
				extra.mu.Lock()
				fields = append(fields, extra.list...)
				extra.mu.Unlock()

				logger.LogAttrs(r.Context(), level, "request", fields...)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
