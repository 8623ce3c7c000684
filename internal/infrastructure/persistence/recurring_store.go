package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecurringItemStore implements metering.RecurringItemStore backed by
// GORM
type GormRecurringItemStore struct {
	db *gorm.DB
}

// NewGormRecurringItemStore creates a new GormRecurringItemStore
func NewGormRecurringItemStore(db *gorm.DB) *GormRecurringItemStore {
	return &GormRecurringItemStore{db: db}
}

// ActiveItemIDs returns the items added before the instant and not removed
// before it, i.e. the carried-over population when a new billing period
// opens
func (s *GormRecurringItemStore) ActiveItemIDs(ctx context.Context, subscriptionID, metricID uuid.UUID, before time.Time) ([]string, error) {
	var itemIDs []string
	err := s.db.WithContext(ctx).
		Model(&RecurringItemModel{}).
		Where("subscription_id = ?", subscriptionID).
		Where("metric_id = ?", metricID).
		Where("added_at < ?", before).
		Where("removed_at IS NULL OR removed_at >= ?", before).
		Order("added_at ASC").
		Pluck("item_id", &itemIDs).Error
	if err != nil {
		return nil, err
	}
	return itemIDs, nil
}

// RecordAdded marks an item as billed from the given instant
func (s *GormRecurringItemStore) RecordAdded(ctx context.Context, subscriptionID, metricID uuid.UUID, itemID string, at time.Time) error {
	return s.db.WithContext(ctx).Create(&RecurringItemModel{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		MetricID:       metricID,
		ItemID:         itemID,
		AddedAt:        at,
	}).Error
}

// RecordRemoved closes the open record for the item, if any
func (s *GormRecurringItemStore) RecordRemoved(ctx context.Context, subscriptionID, metricID uuid.UUID, itemID string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&RecurringItemModel{}).
		Where("subscription_id = ?", subscriptionID).
		Where("metric_id = ?", metricID).
		Where("item_id = ?", itemID).
		Where("removed_at IS NULL").
		Update("removed_at", at).Error
}
