package cache

import (
	"context"
	"fmt"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory chooses between the Redis and in-memory idempotency stores
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the in-memory store.
// Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix for the Redis store
func WithKeyPrefix(prefix string) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		keyPrefix:             DefaultKeyPrefix,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the Redis store when Redis is enabled and reachable.
// A disabled Redis always yields the in-memory store; an unreachable one does so only when fallback is allowed.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisIdempotencyStore(client, f.keyPrefix), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"duplicate notifications are possible across instances",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
