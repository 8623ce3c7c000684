package pricing

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

var validate = validator.New()

// Properties holds the model-specific pricing parameters of a charge.
// Only the fields relevant to the charge's model are read; Validate checks
// exactly those.
type Properties struct {
	// Amount is the per-unit rate of the standard model
	Amount *decimal.Decimal `json:"amount,omitempty"`

	// GraduatedRanges are the tiers of the graduated model
	GraduatedRanges []Tier `json:"graduated_ranges,omitempty"`

	// VolumeRanges are the tiers of the volume model
	VolumeRanges []Tier `json:"volume_ranges,omitempty"`

	// PackageAmount, PackageSize and FreeUnits parameterize the package
	// model: usage beyond FreeUnits is sold in bundles of PackageSize at
	// PackageAmount per bundle, partial bundles rounding up
	PackageAmount *decimal.Decimal `json:"package_amount,omitempty"`
	PackageSize   int64            `json:"package_size,omitempty" validate:"gte=0"`
	FreeUnits     int64            `json:"free_units,omitempty" validate:"gte=0"`

	// Rate and FixedAmount parameterize the percentage model: usage value
	// times Rate percent, plus FixedAmount per billed event
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`

	// FreeUnitsPerEvents and FreeUnitsPerTotalAggregation exempt leading
	// usage from the percentage model, resolved through the aggregator's
	// running-total sequence
	FreeUnitsPerEvents           *int64           `json:"free_units_per_events,omitempty"`
	FreeUnitsPerTotalAggregation *decimal.Decimal `json:"free_units_per_total_aggregation,omitempty"`

	// PerTransactionMinAmount and PerTransactionMaxAmount floor and cap
	// the percentage model's computed amount
	PerTransactionMinAmount *decimal.Decimal `json:"per_transaction_min_amount,omitempty"`
	PerTransactionMaxAmount *decimal.Decimal `json:"per_transaction_max_amount,omitempty"`
}

// Validate checks the parameters required by the given model. Malformed or
// out-of-range parameters surface a validation_failure.
func (p Properties) Validate(model ChargeModelType) error {
	if err := validate.Struct(p); err != nil {
		return shared.ValidationFailure("invalid charge properties: %v", err)
	}

	switch model {
	case ChargeModelStandard:
		if p.Amount == nil {
			return shared.ValidationFailure("standard model requires an amount")
		}
		if p.Amount.IsNegative() {
			return shared.ValidationFailure("standard model: amount cannot be negative")
		}
	case ChargeModelGraduated:
		return validateTiers(model, p.GraduatedRanges)
	case ChargeModelVolume:
		return validateTiers(model, p.VolumeRanges)
	case ChargeModelPackage:
		if p.PackageAmount == nil {
			return shared.ValidationFailure("package model requires a package amount")
		}
		if p.PackageAmount.IsNegative() {
			return shared.ValidationFailure("package model: package amount cannot be negative")
		}
		if p.PackageSize < 1 {
			return shared.ValidationFailure("package model: package size must be at least 1")
		}
	case ChargeModelPercentage:
		if p.Rate == nil {
			return shared.ValidationFailure("percentage model requires a rate")
		}
		if p.Rate.IsNegative() {
			return shared.ValidationFailure("percentage model: rate cannot be negative")
		}
		if p.FixedAmount != nil && p.FixedAmount.IsNegative() {
			return shared.ValidationFailure("percentage model: fixed amount cannot be negative")
		}
		if p.PerTransactionMinAmount != nil && p.PerTransactionMaxAmount != nil &&
			p.PerTransactionMinAmount.GreaterThan(*p.PerTransactionMaxAmount) {
			return shared.ValidationFailure("percentage model: per-transaction minimum exceeds maximum")
		}
	default:
		return shared.UnsupportedModel("charge model", string(model))
	}
	return nil
}

// rate returns the percentage rate, zero when unset
func (p Properties) rate() decimal.Decimal {
	if p.Rate == nil {
		return decimal.Zero
	}
	return *p.Rate
}

// fixedAmount returns the per-event fixed amount, zero when unset
func (p Properties) fixedAmount() decimal.Decimal {
	if p.FixedAmount == nil {
		return decimal.Zero
	}
	return *p.FixedAmount
}

// freeTotal returns the free-units-per-total-aggregation allowance, zero
// when unset
func (p Properties) freeTotal() decimal.Decimal {
	if p.FreeUnitsPerTotalAggregation == nil {
		return decimal.Zero
	}
	return *p.FreeUnitsPerTotalAggregation
}
