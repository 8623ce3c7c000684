package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// Tier is one pricing range shared by the graduated and volume models.
// Tiers are contiguous: each tier covers (FromValue, ToValue], the first
// tier starts at zero, and a nil ToValue marks the open-ended last tier.
// The upper bound is inclusive: usage equal to ToValue lands in that tier.
type Tier struct {
	FromValue     decimal.Decimal  `json:"from_value"`
	ToValue       *decimal.Decimal `json:"to_value,omitempty"`
	PerUnitAmount decimal.Decimal  `json:"per_unit_amount"`
	FlatAmount    decimal.Decimal  `json:"flat_amount"`
}

// validateTiers checks ordering, contiguity and sign constraints for a tier
// list. Violations surface as validation_failure, never as a computed
// negative amount.
func validateTiers(model ChargeModelType, tiers []Tier) error {
	if len(tiers) == 0 {
		return shared.ValidationFailure("%s model requires at least one tier", model)
	}
	for i, tier := range tiers {
		if tier.FromValue.IsNegative() {
			return shared.ValidationFailure("%s model: tier %d has a negative lower bound", model, i)
		}
		if tier.PerUnitAmount.IsNegative() || tier.FlatAmount.IsNegative() {
			return shared.ValidationFailure("%s model: tier %d has a negative amount", model, i)
		}
		if tier.ToValue == nil {
			if i != len(tiers)-1 {
				return shared.ValidationFailure("%s model: tier %d is open-ended but not last", model, i)
			}
			continue
		}
		if !tier.ToValue.GreaterThan(tier.FromValue) {
			return shared.ValidationFailure("%s model: tier %d upper bound must exceed its lower bound", model, i)
		}
		if i+1 < len(tiers) && !tiers[i+1].FromValue.Equal(*tier.ToValue) {
			return shared.ValidationFailure("%s model: tier %d is not contiguous with tier %d", model, i, i+1)
		}
	}
	if !tiers[0].FromValue.IsZero() {
		return shared.ValidationFailure("%s model: first tier must start at zero", model)
	}
	return nil
}

// unitsInTier returns the portion of usage falling inside the tier
func unitsInTier(usage decimal.Decimal, tier Tier) decimal.Decimal {
	upper := usage
	if tier.ToValue != nil && upper.GreaterThan(*tier.ToValue) {
		upper = *tier.ToValue
	}
	units := upper.Sub(tier.FromValue)
	if units.IsNegative() {
		return decimal.Zero
	}
	return units
}

// tierFor selects the single tier containing the total usage. Usage equal
// to a tier's upper bound selects that tier.
func tierFor(usage decimal.Decimal, tiers []Tier) Tier {
	for _, tier := range tiers {
		if tier.ToValue == nil || usage.LessThanOrEqual(*tier.ToValue) {
			return tier
		}
	}
	// Usage beyond a bounded last tier is priced by that tier.
	return tiers[len(tiers)-1]
}
