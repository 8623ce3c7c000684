package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
	"github.com/billing/engine/internal/domain/shared/valueobject"
)

// FeeType distinguishes regular charge fees from the true-up fee covering a
// minimum-commitment shortfall
type FeeType string

const (
	FeeTypeCharge FeeType = "charge"
	FeeTypeTrueUp FeeType = "true_up"
)

// IsValid returns true if the fee type is known
func (t FeeType) IsValid() bool {
	switch t {
	case FeeTypeCharge, FeeTypeTrueUp:
		return true
	}
	return false
}

// PaymentStatus tracks the downstream payment lifecycle of a fee. The
// engine always creates fees pending; later transitions belong to payment
// collaborators.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid returns true if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Fee is one monetary line item: (subscription, charge, optional group)
// priced in minor currency units for one invoice. Immutable once committed
// except for tax and payment-status updates performed by collaborators.
type Fee struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	InvoiceID      uuid.UUID
	SubscriptionID uuid.UUID
	ChargeID       uuid.UUID
	GroupID        *uuid.UUID
	FeeType        FeeType

	AmountCents int64
	Currency    valueobject.Currency
	Units       decimal.Decimal
	EventsCount int

	TaxAmountCents int64
	TaxRate        decimal.Decimal

	PaymentStatus PaymentStatus

	// PayInAdvance fees are created at event-ingestion time, before any
	// invoice exists; EventID records the triggering event
	PayInAdvance bool
	EventID      *uuid.UUID

	// PeriodFrom and PeriodTo record the boundaries the fee was computed
	// over, kept for display and audit
	PeriodFrom time.Time
	PeriodTo   time.Time
}

// Validate performs record-level validation before commit
func (f *Fee) Validate() error {
	if f.InvoiceID == uuid.Nil && !f.PayInAdvance {
		return shared.ValidationFailure("fee requires an invoice id")
	}
	if f.PayInAdvance && f.EventID == nil {
		return shared.ValidationFailure("pay-in-advance fee requires a triggering event id")
	}
	if f.SubscriptionID == uuid.Nil {
		return shared.ValidationFailure("fee requires a subscription id")
	}
	if f.ChargeID == uuid.Nil {
		return shared.ValidationFailure("fee requires a charge id")
	}
	if !f.FeeType.IsValid() {
		return shared.ValidationFailure("fee has an unknown fee type %q", f.FeeType)
	}
	if f.AmountCents < 0 {
		return shared.ValidationFailure("fee amount cannot be negative, got %d", f.AmountCents)
	}
	if !f.Currency.IsValid() {
		return shared.CurrencyFailure(string(f.Currency))
	}
	if !f.PaymentStatus.IsValid() {
		return shared.ValidationFailure("fee has an unknown payment status %q", f.PaymentStatus)
	}
	return nil
}

// TotalAmountCents returns the fee amount including taxes
func (f *Fee) TotalAmountCents() int64 {
	return f.AmountCents + f.TaxAmountCents
}
