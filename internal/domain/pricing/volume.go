package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/metering"
)

// VolumeModel selects one tier from the total aggregated usage and applies
// that tier's per-unit rate to the entire usage plus its flat fee. Unlike
// the graduated model, usage is never split across tiers.
type VolumeModel struct {
	props Properties
}

// Apply implements ChargeModel
func (m *VolumeModel) Apply(result *metering.AggregationResult) (*Result, error) {
	usage := result.Aggregation

	amount := decimal.Zero
	if usage.IsPositive() {
		tier := tierFor(usage, m.props.VolumeRanges)
		amount = usage.Mul(tier.PerUnitAmount).Add(tier.FlatAmount)
	}

	return &Result{
		Amount: amount,
		Units:  usage,
		Count:  result.Count,
	}, nil
}
