package auth

import (
	"net/http"
	"strings"

	"github.com/pendergraft/kontocheck/internal/storage"
)

// KeyLength is the length of the hex part of a generated key
const KeyLength = 48

// KeyFromRequest extracts an API key from X-API-Key or a bearer token.
func KeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// WellFormed reports whether key has the shape of a generated key.
// Malformed keys are rejected without a store lookup.
func WellFormed(key string) bool {
	hexPart, ok := strings.CutPrefix(key, storage.APIKeyPrefix)
	if !ok || len(hexPart) != KeyLength {
		return false
	}
	for _, c := range hexPart {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
