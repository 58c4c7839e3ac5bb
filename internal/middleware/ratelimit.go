package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/eduin/eduin-backend/internal/response"
)

// RateLimiter implements a per-client token bucket. Buckets refill completely
// every interval.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 10 requests per minute).
// Call Run to evict idle clients.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// Run evicts idle clients every minute until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(rl.interval.Seconds())))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// Allow takes one token from key's bucket and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: now}
		rl.visitors[key] = v
	}

	if now.Sub(v.lastSeen) >= rl.interval {
		v.tokens = rl.rate
		v.lastSeen = now
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > 3*rl.interval {
			delete(rl.visitors, ip)
		}
	}
}
