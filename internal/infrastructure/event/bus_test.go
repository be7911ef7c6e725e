package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, payment.AggregateTypeTransaction, uuid.New(), uuid.New()),
	}
}

// recordingHandler records every event it receives
type recordingHandler struct {
	eventTypes []string
	err        error
	panicMsg   string

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T, logger *zap.Logger) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(logger)
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

// drain stops the bus, which waits for every dispatched handler
func drain(t *testing.T, bus *InMemoryEventBus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}

func TestInMemoryEventBus_RoutesByEventType(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	paid := newRecordingHandler(payment.EventTypeTransactionPaid)
	failed := newRecordingHandler(payment.EventTypeTransactionFailed)
	all := newRecordingHandler()
	bus.Subscribe(paid)
	bus.Subscribe(failed)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(payment.EventTypeTransactionPaid),
		newTestEvent(payment.EventTypeTransactionPaid),
		newTestEvent(payment.EventTypeTransactionFailed),
	))
	drain(t, bus)

	assert.Equal(t, 2, paid.count())
	assert.Equal(t, 1, failed.count())
	assert.Equal(t, 3, all.count(), "wildcard handler receives every event")
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	h := newRecordingHandler(payment.EventTypeTransactionPaid)
	bus.Subscribe(h, payment.EventTypeTransactionFailed)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(payment.EventTypeTransactionPaid),
		newTestEvent(payment.EventTypeTransactionFailed),
	))
	drain(t, bus)

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	h := newRecordingHandler(payment.EventTypeTransactionPaid)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid)))
	drain(t, bus)

	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_HandlerFailuresAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := startedBus(t, zap.New(core))

	failing := newRecordingHandler(payment.EventTypeTransactionPaid)
	failing.err = errors.New("notification table locked")
	panicking := newRecordingHandler(payment.EventTypeTransactionPaid)
	panicking.panicMsg = "boom"
	healthy := newRecordingHandler(payment.EventTypeTransactionPaid)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid))
	require.NoError(t, err)
	drain(t, bus)

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, logs.FilterMessage("Event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Event handler panicked").Len())
}

func TestInMemoryEventBus_DetachesFromPublisherCancellation(t *testing.T) {
	bus := startedBus(t, zap.NewNop())

	var sawCancel bool
	var mu sync.Mutex
	release := make(chan struct{})
	h := handlerFunc(func(ctx context.Context, _ shared.DomainEvent) error {
		<-release
		mu.Lock()
		sawCancel = ctx.Err() != nil
		mu.Unlock()
		return nil
	})
	bus.Subscribe(h, payment.EventTypeTransactionPaid)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent(payment.EventTypeTransactionPaid)))
	cancel()
	close(release)
	drain(t, bus)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, sawCancel)
}

func TestInMemoryEventBus_NotRunning(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newRecordingHandler()
	bus.Subscribe(h)

	err := bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid))
	assert.ErrorIs(t, err, ErrBusNotRunning)

	require.NoError(t, bus.Start(context.Background()))
	drain(t, bus)

	err = bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid))
	assert.ErrorIs(t, err, ErrBusNotRunning)
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_StopHonoursDeadline(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	release := make(chan struct{})
	defer close(release)
	bus.Subscribe(handlerFunc(func(context.Context, shared.DomainEvent) error {
		<-release
		return nil
	}), payment.EventTypeTransactionPaid)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemoryEventBus_DispatchTimeout(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithDispatchTimeout(10*time.Millisecond))
	require.NoError(t, bus.Start(context.Background()))

	var deadlineHit bool
	bus.Subscribe(handlerFunc(func(ctx context.Context, _ shared.DomainEvent) error {
		<-ctx.Done()
		deadlineHit = errors.Is(ctx.Err(), context.DeadlineExceeded)
		return ctx.Err()
	}), payment.EventTypeTransactionPaid)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(payment.EventTypeTransactionPaid)))
	drain(t, bus)

	assert.True(t, deadlineHit)
}

// handlerFunc adapts a function to shared.EventHandler for every event type
type handlerFunc func(ctx context.Context, event shared.DomainEvent) error

func (f handlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f(ctx, event)
}

func (f handlerFunc) EventTypes() []string { return nil }
