package event

import (
	"context"

	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/shared"
)

// OutboxPublisher implements shared.EventPublisher by writing events to the
// outbox table. Delivery to consumers happens asynchronously through the
// OutboxProcessor.
type OutboxPublisher struct {
	db         *gorm.DB
	serializer *Serializer
}

// NewOutboxPublisher creates a new OutboxPublisher
func NewOutboxPublisher(db *gorm.DB, serializer *Serializer) *OutboxPublisher {
	return &OutboxPublisher{db: db, serializer: serializer}
}

// Publish stores the events durably
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.PublishWithTx(ctx, p.db, events...)
}

// PublishWithTx stores the events within the caller's transaction so they
// become visible atomically with the caller's own writes
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*OutboxEntry, 0, len(events))
	for _, domainEvent := range events {
		payload, err := p.serializer.Serialize(domainEvent)
		if err != nil {
			return err
		}
		entries = append(entries, NewOutboxEntry(domainEvent, payload))
	}
	return NewOutboxRepository(tx).Save(ctx, entries...)
}

var _ shared.EventPublisher = (*OutboxPublisher)(nil)
