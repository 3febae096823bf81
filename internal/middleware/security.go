package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxBodySize is the largest request body the service accepts.
const MaxBodySize = 1 << 20 // 1MB

// SecurityHeadersMiddleware sets standard security headers on every response.
// The service only serves JSON, so the CSP is a strict deny.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		next.ServeHTTP(w, r)
	})
}

// LimitBodyMiddleware caps request body size to protect against oversized payloads.
func LimitBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// visitor tracks request counts for one client IP within the current window.
type visitor struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// RateLimiter is a fixed-window per-IP rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	cleanup  time.Duration
}

// NewRateLimiter creates a rate limiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		cleanup:  2 * window,
	}
}

// Allow reports whether a request from ip is within the limit, and counts it.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.windowStart) >= rl.window {
		rl.visitors[ip] = &visitor{count: 1, windowStart: now, lastSeen: now}
		rl.evictStale(now)
		return true
	}

	v.lastSeen = now
	if v.count >= rl.rate {
		return false
	}
	v.count++
	return true
}

// evictStale drops visitors idle past the cleanup horizon. Called with the lock held.
func (rl *RateLimiter) evictStale(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.cleanup {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimitConfig holds the per-surface rate limiters.
type RateLimitConfig struct {
	// ReportLimiter covers report generation, which fans out to storage.
	ReportLimiter *RateLimiter

	// APILimiter covers the remaining /api/ surface.
	APILimiter *RateLimiter

	// GlobalLimiter covers everything else.
	GlobalLimiter *RateLimiter
}

// NewDefaultRateLimitConfig returns sensible production limits.
func NewDefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		ReportLimiter: NewRateLimiter(30, time.Minute),
		APILimiter:    NewRateLimiter(120, time.Minute),
		GlobalLimiter: NewRateLimiter(300, time.Minute),
	}
}

// RateLimitMiddleware applies per-IP rate limiting, choosing the limiter by path.
func RateLimitMiddleware(config *RateLimitConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = NewDefaultRateLimitConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := config.GlobalLimiter
			switch {
			case strings.HasPrefix(r.URL.Path, "/api/reports"):
				limiter = config.ReportLimiter
			case strings.HasPrefix(r.URL.Path, "/api/"):
				limiter = config.APILimiter
			}

			ip := GetClientIP(r)
			if !limiter.Allow(ip) {
				log.Warn().
					Str("client_ip", ip).
					Str("path", r.URL.Path).
					Msg("middleware: rate limit exceeded")

				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
