package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/metering"
)

// GraduatedModel splits usage across ascending tiers. Each tier charges its
// own per-unit rate on the portion of usage falling inside it, plus a flat
// fee once the tier holds any units.
type GraduatedModel struct {
	props Properties
}

// Apply implements ChargeModel
func (m *GraduatedModel) Apply(result *metering.AggregationResult) (*Result, error) {
	usage := result.Aggregation
	amount := decimal.Zero
	for _, tier := range m.props.GraduatedRanges {
		units := unitsInTier(usage, tier)
		if units.IsZero() {
			continue
		}
		amount = amount.Add(units.Mul(tier.PerUnitAmount)).Add(tier.FlatAmount)
	}
	return &Result{
		Amount: amount,
		Units:  usage,
		Count:  result.Count,
	}, nil
}
