// Package ratelimit provides a sliding-window request limiter for the
// unauthenticated probe endpoint, which peer services may hammer.
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"enrollsvc/internal/transport/http/shared"
	dErrors "enrollsvc/pkg/domain-errors"
)

// Result reports one admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter admits up to limit requests per key within a sliding window. The
// sliding window avoids the burst-at-boundary problem of fixed windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string][]time.Time
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
	}
}

// Allow records a request for key and reports whether it fits the window.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	hits := l.buckets[key]
	i := 0
	for ; i < len(hits); i++ {
		if hits[i].After(cutoff) {
			break
		}
	}
	hits = hits[i:]

	if len(hits) >= l.limit {
		l.buckets[key] = hits
		return Result{Allowed: false, Remaining: 0, ResetAt: hits[0].Add(l.window)}
	}

	hits = append(hits, now)
	l.buckets[key] = hits
	return Result{
		Allowed:   true,
		Remaining: l.limit - len(hits),
		ResetAt:   hits[0].Add(l.window),
	}
}

// Reset clears the window for a key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Middleware limits by client IP and answers 429 with the standard error
// envelope when the window is exhausted. A nil limiter disables limiting.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Allow(clientIP(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(res.ResetAt).Seconds())+1))
				shared.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
