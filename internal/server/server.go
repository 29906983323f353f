// Package server provides the HTTP server setup and wiring.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/kontocheck/internal/accounts/domain"
	"github.com/pendergraft/kontocheck/internal/accounts/transport"
	"github.com/pendergraft/kontocheck/internal/auth"
	"github.com/pendergraft/kontocheck/internal/config"
	"github.com/pendergraft/kontocheck/internal/methods"
	"github.com/pendergraft/kontocheck/internal/middleware/logging"
	"github.com/pendergraft/kontocheck/internal/middleware/ratelimit"
	"github.com/pendergraft/kontocheck/internal/middleware/realip"
	"github.com/pendergraft/kontocheck/internal/middleware/security"
	"github.com/pendergraft/kontocheck/internal/observability/metrics"
	"github.com/pendergraft/kontocheck/internal/storage"
)

//go:embed openapi.yaml
var openAPISpec []byte

const readyTimeout = 2 * time.Second

var probePaths = []string{"/health", "/healthz", "/readyz"}

// Server is the HTTP server
type Server struct {
	cfg      *config.Config
	store    storage.Store
	registry *methods.Registry
	logger   *slog.Logger
	router   *chi.Mux

	accountsSvc transport.Service
	stopLimiter func()
}

// New creates a new server. store may be nil when storage is disabled, in
// which case API keys and the validation log are unavailable.
func New(cfg *config.Config, store storage.Store, registry *methods.Registry, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		logger:   logger,
		router:   chi.NewRouter(),
	}

	var checks domain.CheckStore
	if store != nil && cfg.Audit.Enabled {
		checks = store
	}
	impl := domain.NewService(registry, checks, logger, cfg.Security.MaxBatchSize)
	s.accountsSvc = domain.LoggingMiddleware(logger)(impl)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// MetricsHandler returns the metrics HTTP handler for separate metrics server
func (s *Server) MetricsHandler() http.Handler {
	return metrics.Handler()
}

// Close releases background resources held by the middleware stack.
func (s *Server) Close() {
	if s.stopLimiter != nil {
		s.stopLimiter()
	}
}

func (s *Server) setupMiddleware() {
	// Real IP first so every later layer sees the resolved client.
	s.router.Use(realip.Middleware(realip.Config{
		TrustProxy:     s.cfg.Proxy.TrustProxy,
		TrustedProxies: s.cfg.Proxy.TrustedProxies,
	}))

	s.router.Use(middleware.RequestID)
	s.router.Use(logging.Middleware(s.logger, probePaths...))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(security.MaxBodySizeMiddleware(s.cfg.Security.MaxBodySizeKB))
	s.router.Use(middleware.Compress(5))

	// CORS
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key, X-Request-Id")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/openapi.yaml", s.handleOpenAPISpec)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleReady)

	accountsHandler := transport.NewHandler(s.accountsSvc)

	limit, stop := ratelimit.Middleware(ratelimit.Config{
		Enabled:        s.cfg.RateLimit.Enabled,
		RequestsPerMin: s.cfg.RateLimit.RequestsPerMin,
		BurstSize:      s.cfg.RateLimit.BurstSize,
		CleanupMinutes: s.cfg.RateLimit.CleanupMinutes,
	}, ratelimit.CallerKey)
	s.stopLimiter = stop

	s.router.Route("/api/v1", func(r chi.Router) {
		switch {
		case s.cfg.Auth.Type == config.AuthAPIKey && s.store != nil:
			r.Use(auth.Middleware(s.store, writeError))
		case s.store != nil:
			// Keys are still attributed when sent, so limits and the log see them.
			r.Use(auth.OptionalMiddleware(s.store))
		}
		r.Use(annotateKey)
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeout) * time.Second))
		}
		// Limit after auth so authenticated callers get their own bucket.
		r.Use(limit)

		accountsHandler.RegisterRoutes(r)
	})
}

// annotateKey adds the authenticating key to the request log line.
func annotateKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := auth.KeyIDFromContext(r.Context()); id != "" {
			logging.Annotate(r.Context(), slog.String("api_key_id", id))
		}
		next.ServeHTTP(w, r)
	})
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"methods": s.registry.Len(),
	})
}

// handleReady reports whether the server can take traffic; it pings
// storage when storage is configured.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOpenAPISpec serves the OpenAPI specification.
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(openAPISpec)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
