// Package realip resolves the client address of a request, honouring
// X-Forwarded-For only when the peer is a trusted proxy.
package realip

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

type contextKey struct{}

// Config holds the configuration for the real IP middleware
type Config struct {
	// TrustProxy enables X-Forwarded-For header parsing
	TrustProxy bool
	// TrustedProxies lists CIDR ranges or single addresses of trusted proxies
	TrustedProxies []string
}

// ParsePrefixes parses CIDR ranges and bare addresses. Invalid entries
// are returned separately so callers can report them.
func ParsePrefixes(entries []string) (prefixes []netip.Prefix, invalid []string) {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		invalid = append(invalid, e)
	}
	return prefixes, invalid
}

// Middleware stores the resolved client address in the request context.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	var trusted []netip.Prefix
	if cfg.TrustProxy {
		trusted, _ = ParsePrefixes(cfg.TrustedProxies)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, ip)))
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := hostOf(r.RemoteAddr)
	if len(trusted) == 0 || !isTrusted(remote, trusted) {
		return remote
	}

	xff := r.Header.Values("X-Forwarded-For")
	if len(xff) == 0 {
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			if a, err := netip.ParseAddr(xri); err == nil {
				return a.Unmap().String()
			}
		}
		return remote
	}

	// Walk right to left; the first untrusted hop is the client.
	hops := strings.Split(strings.Join(xff, ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		a, err := netip.ParseAddr(hop)
		if err != nil {
			// A garbage hop cannot be attributed; stop at the last good one.
			return remote
		}
		if !isTrusted(a.Unmap().String(), trusted) {
			return a.Unmap().String()
		}
		remote = a.Unmap().String()
	}
	return remote
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if a, err := netip.ParseAddr(host); err == nil {
		return a.Unmap().String()
	}
	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// GetClientIP returns the address resolved by Middleware, falling back
// to the peer address.
func GetClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(contextKey{}).(string); ok && ip != "" {
		return ip
	}
	return hostOf(r.RemoteAddr)
}
