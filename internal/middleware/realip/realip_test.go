package realip

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	private := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

	tests := []struct {
		name    string
		cfg     Config
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "proxy headers ignored when trust disabled",
			cfg:     Config{TrustProxy: false, TrustedProxies: private},
			remote:  "192.168.1.100:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:    "192.168.1.100",
		},
		{
			name:    "trusted proxy",
			cfg:     Config{TrustProxy: true, TrustedProxies: private},
			remote:  "10.0.0.1:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.5"},
			want:    "203.0.113.50",
		},
		{
			name:    "untrusted peer",
			cfg:     Config{TrustProxy: true, TrustedProxies: []string{"10.0.0.0/8"}},
			remote:  "192.168.1.100:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:    "192.168.1.100",
		},
		{
			name:    "spoofed leftmost hop is skipped",
			cfg:     Config{TrustProxy: true, TrustedProxies: []string{"10.0.0.0/8"}},
			remote:  "10.0.0.1:12345",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.50"},
			want:    "203.0.113.50",
		},
		{
			name:    "x-real-ip fallback",
			cfg:     Config{TrustProxy: true, TrustedProxies: []string{"10.0.0.0/8"}},
			remote:  "10.0.0.1:12345",
			headers: map[string]string{"X-Real-IP": "203.0.113.50"},
			want:    "203.0.113.50",
		},
		{
			name:    "all hops trusted",
			cfg:     Config{TrustProxy: true, TrustedProxies: private},
			remote:  "10.0.0.1:12345",
			headers: map[string]string{"X-Forwarded-For": "192.168.1.1, 172.16.0.1, 10.0.0.2"},
			want:    "192.168.1.1",
		},
		{
			name:    "garbage hop",
			cfg:     Config{TrustProxy: true, TrustedProxies: private},
			remote:  "10.0.0.1:12345",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip, 10.0.0.2"},
			want:    "10.0.0.2",
		},
		{
			name:   "no headers",
			cfg:    Config{TrustProxy: true, TrustedProxies: private},
			remote: "10.0.0.1:12345",
			want:   "10.0.0.1",
		},
		{
			name:    "single address entry",
			cfg:     Config{TrustProxy: true, TrustedProxies: []string{"127.0.0.1"}},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:    "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := Middleware(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetClientIP(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetClientIP_NoContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.100:12345"
	assert.Equal(t, "192.168.1.100", GetClientIP(req))
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"192.168.1.100:12345": "192.168.1.100",
		"192.168.1.100":       "192.168.1.100",
		"[::1]:8080":          "::1",
		"::1":                 "::1",
		"[::ffff:10.0.0.1]:1": "10.0.0.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, hostOf(in), in)
	}
}

func TestParsePrefixes(t *testing.T) {
	prefixes, invalid := ParsePrefixes([]string{"10.0.0.0/8", " 172.16.0.0/12", "127.0.0.1", "::1", "nope", "10.0.0.0/99"})
	require.Len(t, prefixes, 4)
	assert.Equal(t, []string{"nope", "10.0.0.0/99"}, invalid)

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.255.255.255", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"127.0.0.1", true},
		{"127.0.0.2", false},
		{"::1", true},
		{"203.0.113.50", false},
		{"invalid", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTrusted(tt.ip, prefixes), tt.ip)
	}
}
