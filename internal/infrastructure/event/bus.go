package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/billing/engine/internal/domain/shared"
)

// HandlerFunc consumes one domain event
type HandlerFunc func(ctx context.Context, domainEvent shared.DomainEvent) error

// InMemoryBus implements shared.EventPublisher with in-process pub/sub.
// Handlers run synchronously on the publisher's goroutine; a failing
// handler is logged and never blocks its siblings.
type InMemoryBus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewInMemoryBus creates a new InMemoryBus
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		logger:   logger,
		handlers: make(map[string][]HandlerFunc),
	}
}

// Subscribe registers a handler for the given event types
func (b *InMemoryBus) Subscribe(handler HandlerFunc, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Publish dispatches each event to all handlers subscribed to its type
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, domainEvent := range events {
		b.mu.RLock()
		handlers := b.handlers[domainEvent.EventType()]
		b.mu.RUnlock()

		for _, handler := range handlers {
			if err := b.dispatch(ctx, handler, domainEvent); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", domainEvent.EventType()),
					zap.String("event_id", domainEvent.EventID().String()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// dispatch isolates handler panics from the publisher
func (b *InMemoryBus) dispatch(ctx context.Context, handler HandlerFunc, domainEvent shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", domainEvent.EventType()),
				zap.Any("panic", r))
		}
	}()
	return handler(ctx, domainEvent)
}

var _ shared.EventPublisher = (*InMemoryBus)(nil)
