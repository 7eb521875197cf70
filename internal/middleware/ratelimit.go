package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/siakad-backend/internal/response"
)

// RateLimiter allows rate requests per key in each fixed window of length
// interval. Keys default to the client IP.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	rate     int
	interval time.Duration
	now      func() time.Time
	// KeyFunc picks the bucket of a request.
	KeyFunc func(c *gin.Context) string
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a RateLimiter, e.g. 30 requests per minute.
// A non-positive rate disables limiting.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows:  make(map[string]*window),
		rate:     rate,
		interval: interval,
		now:      time.Now,
		KeyFunc:  func(c *gin.Context) string { return c.ClientIP() },
	}

	go func() {
		for range time.Tick(interval) {
			rl.sweep()
		}
	}()

	return rl
}

// Allow reports whether a request for key fits in the current window and,
// when it does not, how long until the window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.rate <= 0 {
		return true, 0
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.interval {
		rl.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= rl.rate {
		return false, w.start.Add(rl.interval).Sub(now)
	}
	w.count++
	return true, 0
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.Allow(rl.KeyFunc(c))
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.interval {
			delete(rl.windows, key)
		}
	}
}
