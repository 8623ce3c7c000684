package invoicing

import (
	"github.com/google/uuid"

	"github.com/billing/engine/internal/domain/shared"
)

// EventTypeFeesCommitted is published once per tuple after the atomic fee
// commit succeeds. It replaces any delayed-job scheduling: the commit
// result itself is the signal, never a timer.
const EventTypeFeesCommitted = "invoicing.fees_committed"

// FeesCommitted announces that the fee set for one (invoice, subscription,
// charge) tuple is durably visible
type FeesCommitted struct {
	shared.BaseDomainEvent
	Tuple  FeeTuple    `json:"tuple"`
	FeeIDs []uuid.UUID `json:"fee_ids"`
}

// NewFeesCommitted builds the post-commit event for a committed fee batch
func NewFeesCommitted(orgID uuid.UUID, tuple FeeTuple, fees []*Fee) *FeesCommitted {
	ids := make([]uuid.UUID, 0, len(fees))
	for _, fee := range fees {
		ids = append(ids, fee.ID)
	}
	return &FeesCommitted{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeesCommitted, "Invoice", tuple.InvoiceID, orgID),
		Tuple:           tuple,
		FeeIDs:          ids,
	}
}
