package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-portfolio-cms/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimitBlocksAfterBudget(t *testing.T) {
	m := NewRateLimitMiddleware(ratelimit.NewMemoryStore())
	handler := m.Limit("login", 3, time.Minute)(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:4444"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:4444"
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestLimitKeysByClientIP(t *testing.T) {
	m := NewRateLimitMiddleware(ratelimit.NewMemoryStore())
	handler := m.Limit("login", 1, time.Minute)(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:4444", i)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLimitActionsAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	m := NewRateLimitMiddleware(store)
	login := m.Limit("login", 1, time.Minute)(okHandler())
	refresh := m.Limit("refresh", 1, time.Minute)(okHandler())

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/x", nil)
		r.RemoteAddr = "10.0.0.1:4444"
		return r
	}

	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, req())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	login.ServeHTTP(rec, req())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Same IP, different action: unaffected.
	rec = httptest.NewRecorder()
	refresh.ServeHTTP(rec, req())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowDoesNotWriteResponses(t *testing.T) {
	m := NewRateLimitMiddleware(ratelimit.NewMemoryStore())

	assert.True(t, m.Allow("view", "item-1", 2, time.Minute))
	assert.True(t, m.Allow("view", "item-1", 2, time.Minute))
	assert.False(t, m.Allow("view", "item-1", 2, time.Minute))
	assert.True(t, m.Allow("view", "item-2", 2, time.Minute))
}

func TestExtractClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{name: "remote addr only", remoteAddr: "192.168.1.5:1234", want: "192.168.1.5"},
		{name: "forwarded wins", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
		{name: "real ip fallback", remoteAddr: "10.0.0.1:80", realIP: "203.0.113.9", want: "203.0.113.9"},
		{name: "no port", remoteAddr: "192.168.1.5", want: "192.168.1.5"},
		{name: "empty", remoteAddr: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, tc.want, ExtractClientIP(req))
		})
	}
}

func TestGlobalRateLimitAllowsBurstWithinBudget(t *testing.T) {
	handler := NewGlobalRateLimit(100).Handler(okHandler())

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4444"
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestGlobalRateLimitBlocksFlood(t *testing.T) {
	handler := NewGlobalRateLimit(10).Handler(okHandler())

	blocked := false
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4444"
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked = true
			break
		}
	}

	assert.True(t, blocked)
}
