package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.RemoteAddr))
})

// ----------------------------------------------------------------------------
// TrustedRealIP Tests
// ----------------------------------------------------------------------------

func TestParseProxies(t *testing.T) {
	prefixes, err := ParseProxies([]string{"10.0.0.0/8", " 192.168.1.7 ", ""})
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.1.7/32", prefixes[1].String())

	_, err = ParseProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestTrustedRealIP(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	handler := TrustedRealIP(trusted)(okHandler)

	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"trusted real ip", "10.1.2.3:4000", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"trusted forwarded for", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.1.2.3"}, "203.0.113.9"},
		{"trusted invalid header", "10.1.2.3:4000", map[string]string{"X-Real-IP": "nope"}, "10.1.2.3:4000"},
		{"untrusted", "198.51.100.1:4000", map[string]string{"X-Real-IP": "203.0.113.9"}, "198.51.100.1:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::ffff:192.0.2.1]:80"
	assert.Equal(t, "192.0.2.1", ClientIP(req))
}

// ----------------------------------------------------------------------------
// APIKeyAuth Tests
// ----------------------------------------------------------------------------

func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth([]string{"k1", "k2"})(okHandler)

	tests := []struct {
		name   string
		header map[string]string
		want   int
		code   string
	}{
		{"missing", nil, http.StatusUnauthorized, "AUTH_MISSING_KEY"},
		{"invalid", map[string]string{"X-API-Key": "nope"}, http.StatusForbidden, "AUTH_INVALID_KEY"},
		{"header", map[string]string{"X-API-Key": "k2"}, http.StatusOK, ""},
		{"bearer", map[string]string{"Authorization": "Bearer k1"}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), tt.code)
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysRejectsAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ----------------------------------------------------------------------------
// RateLimiter Tests
// ----------------------------------------------------------------------------

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients have separate buckets")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"), "one token refills per second")
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(2 * clientTTL)
	rl.Allow("b")

	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "b")
}

func TestRateLimiter_Handler(t *testing.T) {
	handler := NewRateLimiter(60, 1).Handler(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

// ----------------------------------------------------------------------------
// Logger Tests
// ----------------------------------------------------------------------------

func TestLogger_PassesThrough(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
