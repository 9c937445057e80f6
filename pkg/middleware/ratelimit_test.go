package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	store := newVisitorStore(1, 2, time.Minute)
	h := rateLimit(store, discardLogger())(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = "198.51.100.8:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_RejectionUsesEnvelope(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	h := rateLimit(store, discardLogger())(http.HandlerFunc(okHandler))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)
}

func TestRateLimit_DisabledWhenRPSNotPositive(t *testing.T) {
	h := RateLimit(0, 0, discardLogger())(http.HandlerFunc(okHandler))
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestVisitorStore_SweepsIdleOnAccess(t *testing.T) {
	now := time.Date(2025, 9, 11, 10, 4, 0, 0, time.UTC)
	store := newVisitorStore(5, 5, time.Minute)
	store.now = func() time.Time { return now }

	store.get("10.0.0.1")
	store.get("10.0.0.2")
	now = now.Add(30 * time.Second)
	store.get("10.0.0.2")
	assert.Equal(t, 2, store.len())

	now = now.Add(45 * time.Second)
	store.get("10.0.0.3")
	assert.Equal(t, 2, store.len(), "10.0.0.1 idle for 75s is swept")
}

func TestRateLimit_ZeroBurstStillAdmits(t *testing.T) {
	h := RateLimit(10, 0, discardLogger())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_StartsNoGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		_ = RateLimit(10, 20, discardLogger())
	}
	assert.Less(t, runtime.NumGoroutine()-before, 10)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.1, 10.0.0.1", "", "10.0.0.2:80", "203.0.113.1"},
		{"real ip", "", "203.0.113.9", "10.0.0.2:80", "203.0.113.9"},
		{"bad forwarded falls through", "unknown", "", "10.0.0.2:80", "10.0.0.2"},
		{"remote without port", "", "", "10.0.0.3", "10.0.0.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
