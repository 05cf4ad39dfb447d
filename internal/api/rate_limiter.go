package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-client rate limiting for API requests.
// Clients are keyed by remote IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex

	limit     rate.Limit
	burstSize int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 20
	}
	if burst <= 0 {
		burst = requestsPerSecond * 2
	}
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		limit:     rate.Limit(requestsPerSecond),
		burstSize: burst,
	}
}

// getLimiter returns the rate limiter for a specific client key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check in case another goroutine created it
	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rl.limit, rl.burstSize)
	rl.limiters[key] = limiter

	return limiter
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			if !rl.getLimiter(key).Allow() {
				respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "Rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
