package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/arahumroh/backend/internal/infrastructure/logger"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the API documentation
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDRs, empty allows everyone
}

// SwaggerProtection answers 404 when the docs are disabled and 403 to
// clients outside AllowedIPs. Unparseable entries are ignored.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	var prefixes []netip.Prefix
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				prefixes = append(prefixes, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", logger.GetGinRequestID(c)))
			return
		}
		if restricted && !ipAllowed(c.ClientIP(), prefixes) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", logger.GetGinRequestID(c)))
			return
		}
		c.Next()
	}
}

func ipAllowed(clientIP string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
