package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *manualClock) {
	t.Helper()
	rl := NewRateLimiter(limit, window)
	t.Cleanup(rl.Stop)
	clock := &manualClock{t: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, remaining := rl.Allow("ip:10.0.0.1")
		require.True(t, ok, "request %d", i)
		assert.Equal(t, 2-i, remaining)
	}

	ok, remaining := rl.Allow("ip:10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _ = rl.Allow("ip:10.0.0.2")
	assert.True(t, ok, "other keys have their own bucket")

	clock.Advance(20 * time.Second)
	ok, _ = rl.Allow("ip:10.0.0.1")
	assert.True(t, ok, "one token refills every window/limit")
}

func TestRateLimiter_PurgeIdle(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)

	rl.Allow("ip:idle")
	clock.Advance(90 * time.Second)
	rl.Allow("ip:active")
	clock.Advance(60 * time.Second)

	rl.purgeIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "ip:idle")
	assert.Contains(t, rl.clients, "ip:active")
}

func TestRateLimit_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, time.Hour)
	accountID := uuid.New()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Account") != "" {
			c.Set(JWTAccountIDKey, accountID)
		}
		c.Next()
	})
	router.Use(RateLimit(rl))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(withAccount bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if withAccount {
			req.Header.Set("X-Test-Account", "1")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := do(false)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	limited := do(false)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), dto.ErrCodeRateLimited)

	assert.Equal(t, http.StatusOK, do(true).Code, "authenticated callers are keyed by account")
}
