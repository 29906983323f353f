// Package security holds request hardening middleware.
package security

import (
	"net/http"
)

// MaxBodySizeMiddleware limits the request body to maxSizeKB kilobytes.
// Handlers see an error from the body reader once the limit is crossed; a
// declared Content-Length above the limit is rejected up front.
func MaxBodySizeMiddleware(maxSizeKB int) func(http.Handler) http.Handler {
	maxBytes := int64(maxSizeKB) * 1024

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":{"code":"BODY_TOO_LARGE","message":"Request body too large"}}` + "\n"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
