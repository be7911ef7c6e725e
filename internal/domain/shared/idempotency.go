package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been processed
type IdempotencyStore interface {
	// MarkProcessed atomically records key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key has been marked and not yet expired
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes key so a failed attempt can be retried
	Forget(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed key is remembered. Default: 24 hours
	TTL time.Duration

	// Enabled turns idempotency checking on. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
