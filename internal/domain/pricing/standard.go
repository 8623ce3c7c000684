package pricing

import (
	"github.com/billing/engine/internal/domain/metering"
)

// StandardModel prices every aggregated unit at a flat rate. Free-unit
// allowances are already excluded by the aggregator, so the model is a
// plain multiplication.
type StandardModel struct {
	props Properties
}

// Apply implements ChargeModel
func (m *StandardModel) Apply(result *metering.AggregationResult) (*Result, error) {
	return &Result{
		Amount: result.Aggregation.Mul(*m.props.Amount),
		Units:  result.Aggregation,
		Count:  result.Count,
	}, nil
}
