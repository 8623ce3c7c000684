package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/shared"
)

// GormFeeStore implements invoicing.FeeStore backed by GORM
type GormFeeStore struct {
	db *gorm.DB
}

// NewGormFeeStore creates a new GormFeeStore
func NewGormFeeStore(db *gorm.DB) *GormFeeStore {
	return &GormFeeStore{db: db}
}

// ExistingFees returns the fees already committed for the tuple
func (s *GormFeeStore) ExistingFees(ctx context.Context, tuple invoicing.FeeTuple) ([]*invoicing.Fee, error) {
	var models []FeeModel
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", tuple.InvoiceID).
		Where("charge_id = ?", tuple.ChargeID).
		Where("subscription_id = ?", tuple.SubscriptionID).
		Order("group_key ASC, fee_type ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	fees := make([]*invoicing.Fee, 0, len(models))
	for i := range models {
		fees = append(fees, models[i].ToEntity())
	}
	return fees, nil
}

// CommitFees persists the batch inside one transaction. A unique-index
// violation means another commit for the same tuple already won; callers
// get shared.ErrAlreadyExists and re-read the winner's rows.
func (s *GormFeeStore) CommitFees(ctx context.Context, fees []*invoicing.Fee) error {
	if len(fees) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fee := range fees {
			if err := tx.Create(FeeModelFromEntity(fee)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// isDuplicateKeyError recognizes unique-constraint violations across the
// supported drivers. GORM translates them for postgres; sqlite surfaces
// the raw constraint message.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
