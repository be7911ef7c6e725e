package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports whether the service's dependencies answer
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler. Each check gets at most two seconds.
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

// Health godoc
//
//	@ID				health
//	@Summary		Health check
//	@Description	Pings the database and, when enabled, Redis
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	body := gin.H{"time": h.now().Format(time.RFC3339)}
	healthy := true
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed",
				zap.String("dependency", check.Name),
				zap.Error(err))
			body[check.Name] = "error"
			healthy = false
			continue
		}
		body[check.Name] = "ok"
	}

	if !healthy {
		body["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}
