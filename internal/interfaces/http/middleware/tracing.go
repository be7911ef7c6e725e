// Package middleware provides the gin middleware of the payment API.
package middleware

import (
	"net/http"

	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// Options are passed through to otelgin, mostly a TracerProvider in tests.
	Options []otelgin.Option
}

// TracingWithConfig returns the otelgin middleware, or a pass-through when disabled
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName, cfg.Options...)
}

// TracingAttributeInjector copies request_id and account_id onto the active span.
// Place it after the logger and JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := logger.GetGinRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id, ok := GetJWTAccountID(c); ok {
				span.SetAttributes(attribute.String("account_id", id.String()))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks the span as failed for 5xx responses. Client errors
// such as a webhook for an unknown order are expected and left unset.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
