// ratelimit.go implements per-owner rate limiting with golang.org/x/time/rate.
//
// How token bucket works:
// - Each owner gets a bucket holding up to N tokens (N = requests per minute)
// - Each request consumes 1 token
// - Tokens refill at a steady rate (N per minute)
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// RateLimiter tracks request rates per owner.
type RateLimiter struct {
	mu        sync.Mutex
	perMinute int
	limiters  map[string]*ownerLimiter
	now       func() time.Time
	stop      chan struct{}
}

type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per owner.
// perMinute <= 0 disables limiting. Call Stop to end the cleanup goroutine.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		perMinute: perMinute,
		limiters:  make(map[string]*ownerLimiter),
		now:       time.Now,
		stop:      make(chan struct{}),
	}

	// Start background cleanup goroutine
	go rl.cleanup(10 * time.Minute)

	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// RateLimit returns Gin middleware that enforces per-owner limits. It must
// run after OwnerAuth.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := GetOwnerID(c)
		if owner == "" || rl.perMinute <= 0 {
			c.Next()
			return
		}

		allowed, remaining := rl.allow(owner)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
		if !allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(time.Minute/time.Second)/rl.perMinute+1))
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// allow consumes a token for owner and reports the whole tokens left.
func (rl *RateLimiter) allow(owner string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	ol, ok := rl.limiters[owner]
	if !ok {
		every := time.Minute / time.Duration(rl.perMinute)
		ol = &ownerLimiter{limiter: rate.NewLimiter(rate.Every(every), rl.perMinute)}
		rl.limiters[owner] = ol
	}
	ol.lastSeen = now

	if !ol.limiter.AllowN(now, 1) {
		return false, 0
	}
	return true, int(ol.limiter.TokensAt(now))
}

// cleanup periodically removes idle owners to prevent memory leaks.
func (rl *RateLimiter) cleanup(every time.Duration) {
	// Go Pattern: time.Ticker sends values at regular intervals.
	// Always defer ticker.Stop() to release resources.
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Hour)
		}
	}
}

func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for owner, ol := range rl.limiters {
		if now.Sub(ol.lastSeen) > idle {
			delete(rl.limiters, owner)
		}
	}
}
