package storage

import (
	"context"
	"errors"
	"sync"
)

// MemoryObjectStorage keeps objects in memory. It is the archive's test
// double; the server always archives to S3, and an empty archive endpoint
// means AWS itself.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	err     error
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{objects: make(map[string][]byte)}
}

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// ObjectExists reports whether key was uploaded
func (s *MemoryObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Object returns the stored data for key
func (s *MemoryObjectStorage) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Keys returns every stored key
func (s *MemoryObjectStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// FailWith makes every following Upload return err. Nil restores normal behavior.
func (s *MemoryObjectStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
