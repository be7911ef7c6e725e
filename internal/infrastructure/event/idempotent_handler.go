package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/arahumroh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler outcomes reported to HandlerMetrics
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// HandlerMetrics receives one observation per event passing through an IdempotentHandler
type HandlerMetrics interface {
	ObserveEventHandled(handler, eventType, outcome string)
}

// Named is implemented by handlers that want a stable name in keys and metrics
type Named interface {
	Name() string
}

// IdempotencyStats is a snapshot of one handler's counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps an EventHandler so each event id is handled once per handler.
// A failed attempt releases its key so a redelivery can retry.
type IdempotentHandler struct {
	handler shared.EventHandler
	name    string
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics HandlerMetrics

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption is a functional option for IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithHandlerMetrics reports outcomes to m
func WithHandlerMetrics(m HandlerMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.metrics = m
	}
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		handler: handler,
		name:    handlerName(handler),
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns the wrapped handler's name
func (h *IdempotentHandler) Name() string {
	return h.name
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless this handler already processed the event
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := h.name + ":" + event.EventID().String()
	fields := []zap.Field{
		zap.String("handler", h.name),
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
	}

	marked := false
	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		// A duplicate notification is better than a lost one.
		h.logger.Warn("Idempotency check failed, processing anyway", append(fields, zap.Error(err))...)
	case !isNew:
		h.duplicate.Add(1)
		h.observe(event, OutcomeDuplicate)
		h.logger.Debug("Duplicate event skipped", fields...)
		return nil
	default:
		marked = true
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		h.observe(event, OutcomeFailed)
		if marked {
			if ferr := h.store.Forget(context.WithoutCancel(ctx), key); ferr != nil {
				h.logger.Warn("Failed to release idempotency key", append(fields, zap.Error(ferr))...)
			}
		}
		return err
	}

	h.processed.Add(1)
	h.observe(event, OutcomeProcessed)
	return nil
}

// Stats returns a snapshot of this handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

func (h *IdempotentHandler) observe(event shared.DomainEvent, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveEventHandled(h.name, event.EventType(), outcome)
	}
}

func handlerName(handler shared.EventHandler) string {
	if n, ok := handler.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", handler)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
