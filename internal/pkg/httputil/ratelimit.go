package httputil

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits requests per client IP using a token bucket.
// perMinute is the sustained rate, burst the bucket size. Stale limiters
// are evicted lazily.
func RateLimitMiddleware(perMinute, burst int) func(http.Handler) http.Handler {
	limiters := &ipLimiters{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// RemoteAddr is rewritten by chi's RealIP middleware upstream.
			if !limiters.allow(clientIP(r)) {
				Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now

	if len(l.entries) > 1024 {
		l.evict(now)
	}

	return entry.limiter.Allow()
}

// evict removes limiters idle for more than 10 minutes. Caller holds mu.
func (l *ipLimiters) evict(now time.Time) {
	for ip, entry := range l.entries {
		if now.Sub(entry.lastSeen) > 10*time.Minute {
			delete(l.entries, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	// Strip the port if present.
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
