package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/partsdesk/partsdesk/internal/config"
)

// visitor tracks the token bucket for a single client IP.
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// rateLimiter applies a per-IP token bucket to mutating routes. Buckets
// refill at rps tokens per second up to burst.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      float64
	burst    float64
	exempt   map[string]struct{}
	now      func() time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	exempt := make(map[string]struct{}, len(cfg.ExemptIPs))
	for _, ip := range cfg.ExemptIPs {
		exempt[ip] = struct{}{}
	}

	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rps:      float64(cfg.RPS),
		burst:    float64(cfg.Burst),
		exempt:   exempt,
		now:      time.Now,
	}

	go rl.cleanupVisitors()
	return rl
}

// allow consumes one token from the bucket for ip, refilling it first based
// on elapsed time. Returns false when the bucket is empty.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{tokens: rl.burst}
		rl.visitors[ip] = v
	} else {
		elapsed := now.Sub(v.lastSeen).Seconds()
		v.tokens += elapsed * rl.rps
		if v.tokens > rl.burst {
			v.tokens = rl.burst
		}
	}
	v.lastSeen = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

// cleanupVisitors periodically removes stale entries so the map does not
// grow without bound.
func (rl *rateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		cutoff := rl.now().Add(-3 * time.Minute)
		for ip, v := range rl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Handler wraps mutating routes with the rate limit check. Exempt IPs
// bypass the bucket entirely.
func (rl *rateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if _, ok := rl.exempt[ip]; ok {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too many requests. Please slow down.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP from the request. RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
