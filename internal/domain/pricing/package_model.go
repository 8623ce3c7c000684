package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/metering"
)

// PackageModel sells usage in fixed-size bundles. Usage beyond the free
// allowance is divided into packages of PackageSize units, a started
// package counting as a whole one.
type PackageModel struct {
	props Properties
}

// Apply implements ChargeModel
func (m *PackageModel) Apply(result *metering.AggregationResult) (*Result, error) {
	billable := result.Aggregation.Sub(decimal.NewFromInt(m.props.FreeUnits))
	if billable.IsNegative() {
		billable = decimal.Zero
	}

	packages := billable.Div(decimal.NewFromInt(m.props.PackageSize)).Ceil()
	return &Result{
		Amount: packages.Mul(*m.props.PackageAmount),
		Units:  result.Aggregation,
		Count:  result.Count,
	}, nil
}
