package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/examprep-backend/internal/response"
)

// RateLimiter is a token bucket per client IP and route. Imports parse large
// pastes, so each import route gets its own budget.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[bucketKey]*bucket
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type bucketKey struct {
	ip    string
	route string
}

type bucket struct {
	tokens   int
	refilled time.Time
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing rate requests per interval.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[bucketKey]*bucket),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}

	go func() {
		for range time.Tick(time.Minute) {
			rl.cleanup()
		}
	}()

	return rl
}

// allow takes one token from the bucket of key. When the bucket is empty it
// returns how long until the next refill.
func (rl *RateLimiter) allow(key bucketKey) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: now}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if periods := int(now.Sub(b.refilled) / rl.interval); periods > 0 {
		b.tokens = min(rl.rate, b.tokens+periods*rl.rate)
		b.refilled = b.refilled.Add(time.Duration(periods) * rl.interval)
	}

	if b.tokens <= 0 {
		return false, b.refilled.Add(rl.interval).Sub(now)
	}
	b.tokens--
	return true, 0
}

// Middleware returns a Gin middleware that rate-limits requests by IP and route.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.allow(bucketKey{ip: c.ClientIP(), route: c.FullPath()})
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > 3*rl.interval {
			delete(rl.buckets, k)
		}
	}
}
