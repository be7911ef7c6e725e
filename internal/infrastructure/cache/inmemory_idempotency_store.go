package cache

import (
	"context"
	"sync"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
)

const defaultCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore implements IdempotencyStore with a map.
// State is per process, so it only deduplicates within a single instance.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiresAt map[string]time.Time
	now       func() time.Time
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryIdempotencyStore
type InMemoryOption func(*InMemoryIdempotencyStore)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryIdempotencyStore) {
		s.now = now
	}
}

// WithCleanupInterval sets how often expired keys are purged. Zero disables the background purge.
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(s *InMemoryIdempotencyStore) {
		s.interval = d
	}
}

// NewInMemoryIdempotencyStore creates the store and starts its cleanup goroutine
func NewInMemoryIdempotencyStore(opts ...InMemoryOption) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiresAt: make(map[string]time.Time),
		now:       time.Now,
		interval:  defaultCleanupInterval,
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.interval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	return s
}

// MarkProcessed records key unless a live entry already exists
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expiresAt[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiresAt[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key has a live entry
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expiresAt[key]
	return ok && s.now().Before(exp), nil
}

// Forget removes key
func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expiresAt, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of entries, expired ones included until the next purge
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiresAt)
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expiresAt {
		if !now.Before(exp) {
			delete(s.expiresAt, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
