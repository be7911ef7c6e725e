package middleware

import (
	"context"
	"strings"

	"github.com/arahumroh/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling runs each request under pprof labels for its method, route
// pattern and resource so Pyroscope can filter samples by endpoint. Requests
// that matched no route, and paths under skipPrefixes, run unlabeled.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(route, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			"method", c.Request.Method,
			"route", route,
			"resource", resourceFromRoute(route),
		)
	}
}

// resourceFromRoute returns the first static segment after /api/vN,
// e.g. "payments" for /api/v1/payments/transactions/:order_id
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part):
			continue
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		}
		return part
	}
	return "root"
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
