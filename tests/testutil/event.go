package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordingHandler is a shared.EventHandler that records what it receives.
type RecordingHandler struct {
	mu         sync.Mutex
	name       string
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingHandler creates a handler subscribed to eventTypes.
func NewRecordingHandler(name string, eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{name: name, eventTypes: eventTypes}
}

// Name returns the handler name used in idempotency keys.
func (h *RecordingHandler) Name() string {
	return h.name
}

// EventTypes returns the event types this handler subscribes to.
func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error.
func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the handled events.
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledCount returns the number of handled events.
func (h *RecordingHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError sets the error to return from Handle.
func (h *RecordingHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// TestEvent is a minimal domain event.
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates an event of eventType for the account.
func NewTestEvent(eventType string, accountID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), accountID),
	}
}

// WaitForEventCount waits until the handler has processed at least count events.
func WaitForEventCount(t *testing.T, handler *RecordingHandler, count int, timeout time.Duration) {
	t.Helper()
	RequireEventually(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond, "handler %s saw fewer than %d events", handler.Name(), count)
}
