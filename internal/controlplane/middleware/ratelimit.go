package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig controls the per-route token bucket guarding the control
// plane's two endpoints. The engine has no tenant or user concept to meter
// against (see Claims in auth.go) — the only axis worth splitting a budget
// on is the route itself, since /metrics is scraped far more often than
// /status is polled.
type RateLimitConfig struct {
	Enabled bool

	PerSecond float64 // token refill rate
	Burst     int     // bucket capacity

	// IdleEvictAfter is how long a client's bucket may sit unused before
	// the cleanup loop reclaims it. Zero or a negative value selects the
	// default of 10 minutes.
	IdleEvictAfter time.Duration
}

// clientBucket is one caller's token bucket plus the wall-clock time it was
// last consumed from, so the cleanup loop can tell an idle bucket from a
// busy one instead of wiping the whole map on a size threshold.
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RouteLimiter holds one independent token bucket per (client, route) pair.
// Scraping /metrics on a tight interval never eats into the /status
// budget, and vice versa.
type RouteLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*clientBucket
	stop    chan struct{}
}

// NewRateLimiter builds a RouteLimiter and starts its idle-eviction loop.
func NewRateLimiter(cfg RateLimitConfig) *RouteLimiter {
	if cfg.IdleEvictAfter <= 0 {
		cfg.IdleEvictAfter = 10 * time.Minute
	}
	rl := &RouteLimiter{
		cfg:     cfg,
		buckets: make(map[string]*clientBucket),
		stop:    make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

// Close stops the eviction loop. Safe to call more than once.
func (rl *RouteLimiter) Close() {
	select {
	case <-rl.stop:
	default:
		close(rl.stop)
	}
}

func (rl *RouteLimiter) bucketFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.PerSecond), rl.cfg.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// evictIdle periodically drops buckets that have not been touched within
// IdleEvictAfter, bounding memory growth without discarding buckets that
// are still actively rate-limiting a caller.
func (rl *RouteLimiter) evictIdle() {
	ticker := time.NewTicker(rl.cfg.IdleEvictAfter / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > rl.cfg.IdleEvictAfter {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimitMiddleware enforces one token-bucket budget per (client IP,
// route) pair.
func RateLimitMiddleware(limiter *RouteLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r) + "|" + r.URL.Path
			bucket := limiter.bucketFor(key)

			w.Header().Set("X-RateLimit-Burst", fmt.Sprintf("%d", limiter.cfg.Burst))
			if !bucket.Allow() {
				writeRateLimitError(w, r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller's address, preferring a proxy-supplied
// header over the raw connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return r.RemoteAddr
}

func writeRateLimitError(w http.ResponseWriter, route string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"error":"rate limit exceeded","route":%q,"retry_after_seconds":1}`, route)
}
