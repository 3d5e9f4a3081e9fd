package http

import (
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiter manages per-IP token buckets. The bucket cache is a
// bounded LRU so drive-by scanners cannot grow it without limit;
// an evicted IP simply gets a fresh bucket on its next request.
type RateLimiter struct {
	ips   *lru.Cache[string, *rate.Limiter]
	rps   rate.Limit
	burst int
}

// NewRateLimiter creates a new rate limiter tracking at most maxIPs
// distinct client addresses.
func NewRateLimiter(rps float64, burst, maxIPs int) (*RateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](maxIPs)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		ips:   cache,
		rps:   rate.Limit(rps),
		burst: burst,
	}, nil
}

// GetLimiter returns the limiter for an IP, creating one on first sight.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	if limiter, ok := rl.ips.Get(ip); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rps, rl.burst)
	// Two goroutines may race here; both limiters share the same
	// parameters so losing the race is harmless.
	rl.ips.Add(ip, limiter)
	return limiter
}

// RateLimitMiddleware creates a middleware for rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r)

			limiter := rl.GetLimiter(ip)
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
