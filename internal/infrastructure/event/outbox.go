package event

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/shared"
)

// OutboxStatus is the delivery state of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusSent       OutboxStatus = "sent"
	OutboxStatusFailed     OutboxStatus = "failed"
	OutboxStatusDead       OutboxStatus = "dead"
)

// maxDeliveryAttempts bounds redelivery before an entry goes dead
const maxDeliveryAttempts = 5

// retryBackoffBase is doubled per failed attempt
const retryBackoffBase = 30 * time.Second

// OutboxEntry is a durably stored domain event awaiting delivery. Entries
// are written in the same transaction as the fee commit so publication can
// never be observed before the fees are.
type OutboxEntry struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	EventID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_event"`
	EventType      string       `gorm:"size:128;not null"`
	AggregateType  string       `gorm:"size:64;not null"`
	AggregateID    uuid.UUID    `gorm:"type:uuid;not null"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null"`
	Payload        []byte       `gorm:"type:jsonb;not null"`
	Status         OutboxStatus `gorm:"size:16;not null;index:idx_outbox_status"`
	RetryCount     int          `gorm:"not null;default:0"`
	LastError      string       `gorm:"type:text"`
	NextRetryAt    *time.Time
	ProcessedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;index:idx_outbox_created"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for OutboxEntry
func (OutboxEntry) TableName() string {
	return "event_outbox"
}

// NewOutboxEntry wraps a serialized domain event for durable delivery
func NewOutboxEntry(domainEvent shared.DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:             uuid.New(),
		EventID:        domainEvent.EventID(),
		EventType:      domainEvent.EventType(),
		AggregateType:  domainEvent.AggregateType(),
		AggregateID:    domainEvent.AggregateID(),
		OrganizationID: domainEvent.OrganizationID(),
		Payload:        payload,
		Status:         OutboxStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkSent records a successful delivery
func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.NextRetryAt = nil
}

// MarkFailed records a delivery failure and schedules the retry with
// exponential backoff. The entry goes dead once the attempts are exhausted.
func (e *OutboxEntry) MarkFailed(reason string) {
	e.RetryCount++
	e.LastError = reason
	if e.RetryCount >= maxDeliveryAttempts {
		e.Status = OutboxStatusDead
		e.NextRetryAt = nil
		return
	}
	e.Status = OutboxStatusFailed
	next := time.Now().Add(retryBackoffBase << (e.RetryCount - 1))
	e.NextRetryAt = &next
}

// IsDead reports whether the entry exhausted its delivery attempts
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// AutoMigrate creates the outbox table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&OutboxEntry{})
}
