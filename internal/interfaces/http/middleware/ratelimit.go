package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. A bucket holds limit
// tokens and refills at limit per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*visitor
	limit   int
	every   rate.Limit
	window  time.Duration
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its idle-client cleanup
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   limit,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop(window * 2)
	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.purgeIdle()
		}
	}
}

func (rl *RateLimiter) purgeIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, v := range rl.clients {
		if v.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Allow consumes a token for key and reports whether one was available,
// along with the tokens left afterwards
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// RateLimit limits authenticated callers per account and anonymous callers per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id, ok := GetJWTAccountID(c); ok {
			key = "account:" + id.String()
		}

		allowed, remaining := limiter.Allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				logger.GetGinRequestID(c),
			))
			return
		}
		c.Next()
	}
}
