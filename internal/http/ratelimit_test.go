package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitByIP_AllowsWithinBurst(t *testing.T) {
	next := &countingHandler{}
	handler := RateLimitByIP(RateLimitConfig{
		RequestsPerMinute: 5,
		Burst:             3,
		Logger:            testLogger(),
	})(next)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/emergency-login", nil)
		req.RemoteAddr = "203.0.113.10:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
	assert.Equal(t, 3, next.calls)
}

func TestRateLimitByIP_BlocksWhenExhausted(t *testing.T) {
	next := &countingHandler{}
	handler := RateLimitByIP(RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             1,
		Logger:            testLogger(),
	})(next)

	first := httptest.NewRequest(http.MethodPost, "/api/auth/emergency-login", nil)
	first.RemoteAddr = "203.0.113.10:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/auth/emergency-login", nil)
	second.RemoteAddr = "203.0.113.10:5678"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")
	assert.Equal(t, 1, next.calls)
}

func TestRateLimitByIP_PerClientBuckets(t *testing.T) {
	next := &countingHandler{}
	handler := RateLimitByIP(RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             1,
		Logger:            testLogger(),
	})(next)

	for _, addr := range []string{"203.0.113.10:1", "203.0.113.11:1", "203.0.113.12:1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/emergency-login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "addr %s", addr)
	}
	assert.Equal(t, 3, next.calls)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.10:1234",
			want:       "203.0.113.10",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.20"},
			want:       "203.0.113.20",
		},
		{
			name:       "x-forwarded-for chain uses first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.20, 10.0.0.2, 10.0.0.3"},
			want:       "203.0.113.20",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.30"},
			want:       "203.0.113.30",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, clientIP(req))
		})
	}
}
