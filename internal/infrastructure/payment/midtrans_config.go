package payment

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	midtransSnapSandboxURL    = "https://app.sandbox.midtrans.com"
	midtransSnapProductionURL = "https://app.midtrans.com"
	midtransAPISandboxURL     = "https://api.sandbox.midtrans.com"
	midtransAPIProductionURL  = "https://api.midtrans.com"
)

// MidtransConfig contains configuration for the Midtrans Snap and Core APIs
type MidtransConfig struct {
	// ServerKey authenticates API calls and signs notifications
	ServerKey string
	// IsProduction selects the production endpoints instead of the sandbox
	IsProduction bool
	// SnapBaseURL overrides the Snap endpoint
	SnapBaseURL string
	// APIBaseURL overrides the Core API endpoint used for status queries
	APIBaseURL string
	// Timeout bounds each outbound request. Default: 30s
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMidtransMissingServerKey = errors.New("midtrans: missing server key")
	ErrMidtransInvalidBaseURL   = errors.New("midtrans: invalid base URL")
)

// Validate validates the configuration
func (c *MidtransConfig) Validate() error {
	if strings.TrimSpace(c.ServerKey) == "" {
		return ErrMidtransMissingServerKey
	}
	for _, raw := range []string{c.SnapBaseURL, c.APIBaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ErrMidtransInvalidBaseURL
		}
	}
	return nil
}

func (c *MidtransConfig) snapURL() string {
	if c.SnapBaseURL != "" {
		return strings.TrimRight(c.SnapBaseURL, "/")
	}
	if c.IsProduction {
		return midtransSnapProductionURL
	}
	return midtransSnapSandboxURL
}

func (c *MidtransConfig) apiURL() string {
	if c.APIBaseURL != "" {
		return strings.TrimRight(c.APIBaseURL, "/")
	}
	if c.IsProduction {
		return midtransAPIProductionURL
	}
	return midtransAPISandboxURL
}

func (c *MidtransConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}
