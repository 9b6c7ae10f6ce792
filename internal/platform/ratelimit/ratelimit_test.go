package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"enrollsvc/internal/platform/ratelimit"
)

func TestLimiterAdmitsUpToLimit(t *testing.T) {
	l := ratelimit.NewLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		res := l.Allow("10.0.0.1")
		assert.True(t, res.Allowed, "request %d should pass", i)
	}
	res := l.Allow("10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := ratelimit.NewLimiter(1, time.Minute)

	assert.True(t, l.Allow("10.0.0.1").Allowed)
	assert.False(t, l.Allow("10.0.0.1").Allowed)
	assert.True(t, l.Allow("10.0.0.2").Allowed)
}

func TestLimiterWindowSlides(t *testing.T) {
	l := ratelimit.NewLimiter(1, 20*time.Millisecond)

	assert.True(t, l.Allow("k").Allowed)
	assert.False(t, l.Allow("k").Allowed)

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("k").Allowed)
}

func TestLimiterReset(t *testing.T) {
	l := ratelimit.NewLimiter(1, time.Minute)

	assert.True(t, l.Allow("k").Allowed)
	l.Reset("k")
	assert.True(t, l.Allow("k").Allowed)
}

func TestMiddlewareReturns429WithEnvelope(t *testing.T) {
	l := ratelimit.NewLimiter(1, time.Minute)
	handler := ratelimit.Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/check", nil)
	req.RemoteAddr = "10.0.0.1:4444"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too many requests","error":"too_many_requests"}`, w.Body.String())
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	handler := ratelimit.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/check", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
