package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arahumroh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusNotRunning is returned by Publish before Start or after Stop
var ErrBusNotRunning = errors.New("event bus is not running")

const defaultDispatchTimeout = 30 * time.Second

// InMemoryEventBus delivers domain events to in-process handlers.
// Each event/handler pair runs on its own goroutine, detached from the
// publisher's cancellation, so a webhook response never waits on notifications.
type InMemoryEventBus struct {
	registry        *HandlerRegistry
	logger          *zap.Logger
	dispatchTimeout time.Duration

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithDispatchTimeout bounds how long one handler may run for one event
func WithDispatchTimeout(d time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.dispatchTimeout = d
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:        NewHandlerRegistry(),
		logger:          logger,
		dispatchTimeout: defaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish schedules every event for every matching handler and returns immediately
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return ErrBusNotRunning
	}

	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.wg.Add(1)
			go func(h shared.EventHandler, e shared.DomainEvent) {
				defer b.wg.Done()
				b.dispatch(detached, h, e)
			}(handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start allows publishing
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()

	b.logger.Info("Event bus started")
	return nil
}

// Stop rejects new events and waits for in-flight handlers, or for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	ctx, cancel := context.WithTimeout(ctx, b.dispatchTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("handler", handlerName(handler)),
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("Event handler failed",
			zap.String("handler", handlerName(handler)),
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
