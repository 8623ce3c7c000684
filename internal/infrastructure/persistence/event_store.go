package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/metering"
)

// GormEventStore implements metering.EventStore backed by GORM
type GormEventStore struct {
	db *gorm.DB
}

// NewGormEventStore creates a new GormEventStore
func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

// EventsMatching returns the events in [From, To) for the filter's
// subscription and metric code, ordered by timestamp ascending. Group
// matching happens in memory: group dimensions live inside the JSON
// properties payload, outside the indexed columns.
func (s *GormEventStore) EventsMatching(ctx context.Context, filter metering.EventFilter) ([]*metering.Event, error) {
	var models []EventModel
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", filter.OrganizationID).
		Where("subscription_id = ?", filter.SubscriptionID).
		Where("code = ?", filter.Code).
		Where("timestamp >= ? AND timestamp < ?", filter.From, filter.To).
		Order("timestamp ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	events := make([]*metering.Event, 0, len(models))
	for i := range models {
		event := models[i].ToEntity()
		if filter.Group != nil && !event.MatchesGroup(filter.Group) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// SaveEvent persists a single ingested event
func (s *GormEventStore) SaveEvent(ctx context.Context, event *metering.Event) error {
	return s.db.WithContext(ctx).Create(EventModelFromEntity(event)).Error
}
