package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Paths that must stay reachable even for a throttled client.
var rateLimitExempt = map[string]bool{
	"/":       true,
	"/health": true,
}

// RateLimiter enforces a per-client sliding window: at most limit requests
// within window. Clients are keyed by IP, honoring X-Forwarded-For and
// X-Real-IP when present.
type RateLimiter struct {
	limit  int
	window time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string][]time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter and starts its background expiry of stale
// clients.
func NewRateLimiter(limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		logger:  logger,
		clients: make(map[string][]time.Time),
		now:     time.Now,
	}
	go rl.expireLoop()
	return rl
}

// Middleware wraps next with the rate limit check.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rateLimitExempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		client := clientIP(r)
		allowed, remaining, retryAfter := rl.allow(client)

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Window", rl.window.String())

		if !allowed {
			rl.logger.Warn("rate limit exceeded", zap.String("client", client))
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"rate limit exceeded, retry in %ds"}`, int(retryAfter.Seconds())+1)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records one request for client and reports whether it fits in the
// window, the remaining budget, and how long until the oldest request ages
// out when it does not.
func (rl *RateLimiter) allow(client string) (allowed bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	stamps := rl.clients[client]
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.limit {
		rl.clients[client] = kept
		return false, 0, kept[0].Sub(cutoff)
	}

	kept = append(kept, now)
	rl.clients[client] = kept
	return true, rl.limit - len(kept), 0
}

func (rl *RateLimiter) expireLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		rl.expire()
	}
}

// expire drops clients whose every request has aged out of the window.
func (rl *RateLimiter) expire() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for client, stamps := range rl.clients {
		live := false
		for _, t := range stamps {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(rl.clients, client)
		}
	}
}

// clientIP extracts the caller identity, preferring proxy headers over the
// raw remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
