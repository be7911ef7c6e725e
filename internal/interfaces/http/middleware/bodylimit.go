package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// streaming bodies. onTooLarge writes the 413 body; nil aborts with no body.
// Handlers reading past the cap get an *http.MaxBytesError.
func BodyLimit(maxBytes int64, onTooLarge func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			if onTooLarge != nil {
				onTooLarge(c)
				c.Abort()
				return
			}
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
