// Package ratelimit provides token bucket rate limiting middleware keyed by
// API key when the caller authenticated, and by client IP otherwise.
package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pendergraft/kontocheck/internal/auth"
	"github.com/pendergraft/kontocheck/internal/middleware/realip"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMin is the number of requests allowed per minute per caller
	RequestsPerMin int
	// BurstSize is the maximum burst size
	BurstSize int
	// CleanupMinutes is how often to clean up stale entries
	CleanupMinutes int
}

// KeyFunc derives the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

// CallerKey charges authenticated requests to their API key and anonymous
// requests to the client IP.
func CallerKey(r *http.Request) string {
	if id := auth.KeyIDFromContext(r.Context()); id != "" {
		return "key:" + id
	}
	return "ip:" + realip.GetClientIP(r)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages per-caller rate limiters
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	perMin  int
	cleanup time.Duration
	keyFn   KeyFunc
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// New creates a new RateLimiter and starts its cleanup goroutine. A nil
// keyFn means CallerKey.
func New(cfg Config, keyFn KeyFunc) *RateLimiter {
	if keyFn == nil {
		keyFn = CallerKey
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	cleanup := time.Duration(cfg.CleanupMinutes) * time.Minute
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}

	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:   burst,
		perMin:  cfg.RequestsPerMin,
		cleanup: cleanup,
		keyFn:   keyFn,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictStale()
		case <-rl.stopCh:
			return
		}
	}
}

// evictStale drops buckets not used within one cleanup interval.
func (rl *RateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.cleanup)
	for k, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, k)
		}
	}
}

// Len returns the number of tracked callers.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// reserve takes a token for key. It returns zero when the request may
// proceed, or how long the caller has to wait.
func (rl *RateLimiter) reserve(key string) time.Duration {
	rl.mu.Lock()
	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Minute
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	return delay
}

// exempt paths are never limited
var exempt = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/readyz":  true,
}

// Middleware returns an HTTP middleware enforcing the limit.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if rl.perMin > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.perMin))
			}

			if wait := rl.reserve(rl.keyFn(r)); wait > 0 {
				retry := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"code":    "RATE_LIMIT_EXCEEDED",
						"message": "Too many requests. Please try again later.",
						"details": map[string]any{"retryAfterSeconds": retry},
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Middleware returns a rate limiting middleware with the given configuration.
// The returned stop function releases the cleanup goroutine; it is a no-op
// when limiting is disabled.
func Middleware(cfg Config, keyFn KeyFunc) (func(http.Handler) http.Handler, func()) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, func() {}
	}
	rl := New(cfg, keyFn)
	return rl.Middleware(), rl.Stop
}
