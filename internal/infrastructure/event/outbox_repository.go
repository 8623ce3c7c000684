package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxRepository persists outbox entries
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx}
}

// Save persists one or more entries
func (r *OutboxRepository) Save(ctx context.Context, entries ...*OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindDue retrieves entries ready for delivery: pending ones plus failed
// ones whose retry time has passed, oldest first.
func (r *OutboxRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*OutboxEntry, error) {
	var entries []*OutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND next_retry_at <= ?)",
			OutboxStatusPending, OutboxStatusFailed, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// MarkProcessing atomically claims entries for delivery so concurrent
// processors never dispatch the same event twice
func (r *OutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var claimed []*OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id IN ? AND status IN ?", ids, []OutboxStatus{OutboxStatusPending, OutboxStatusFailed}).
			Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		claimedIDs := make([]uuid.UUID, len(claimed))
		for i, e := range claimed {
			claimedIDs[i] = e.ID
		}
		now := time.Now()
		if err := tx.Model(&OutboxEntry{}).
			Where("id IN ?", claimedIDs).
			Updates(map[string]any{"status": OutboxStatusProcessing, "updated_at": now}).Error; err != nil {
			return err
		}
		for _, e := range claimed {
			e.Status = OutboxStatusProcessing
			e.UpdatedAt = now
		}
		return nil
	})
	return claimed, err
}

// Update persists the entry's delivery state
func (r *OutboxRepository) Update(ctx context.Context, entry *OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(entry).Error
}

// DeleteSentBefore removes delivered entries older than the cutoff
func (r *OutboxRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", OutboxStatusSent, cutoff).
		Delete(&OutboxEntry{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns the number of entries per delivery state
func (r *OutboxRepository) CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error) {
	type statusCount struct {
		Status OutboxStatus
		Count  int64
	}

	var results []statusCount
	err := r.db.WithContext(ctx).
		Model(&OutboxEntry{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[OutboxStatus]int64)
	for _, rc := range results {
		counts[rc.Status] = rc.Count
	}
	return counts, nil
}
