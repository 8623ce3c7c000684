package invoicing

import (
	"context"

	"github.com/google/uuid"
)

// FeeTuple identifies the at-most-once unit of fee creation
type FeeTuple struct {
	InvoiceID      uuid.UUID
	ChargeID       uuid.UUID
	SubscriptionID uuid.UUID
}

// FeeStore persists fees. CommitFees is atomic: either every fee in the
// batch becomes visible or none does. A concurrent commit for the same
// tuple must fail with shared.ErrAlreadyExists so the loser can re-read the
// winner's fees.
type FeeStore interface {
	// ExistingFees returns the fees already committed for the tuple,
	// empty when the tuple has not been billed yet
	ExistingFees(ctx context.Context, tuple FeeTuple) ([]*Fee, error)

	// CommitFees persists the batch as a single unit
	CommitFees(ctx context.Context, fees []*Fee) error
}

// TaxService is the external tax-computation collaborator. ApplyTaxes
// populates the fee's tax fields in place; any error is fatal for the
// whole tuple.
type TaxService interface {
	ApplyTaxes(ctx context.Context, fee *Fee) error
}
