package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/metering"
)

var oneHundred = decimal.NewFromInt(100)

// PercentageModel prices usage as a percentage of its aggregated value,
// plus a fixed amount per billed event. Free-unit allowances are resolved
// through the aggregator's running-total sequence: fully free events pay
// neither rate nor fixed amount, a partially free event pays the rate on
// the paid remainder and its fixed amount. The final amount is floored and
// capped by the optional per-transaction bounds.
type PercentageModel struct {
	props Properties
}

// Apply implements ChargeModel
func (m *PercentageModel) Apply(result *metering.AggregationResult) (*Result, error) {
	freeValue, freeEvents := m.freeAllowance(result.RunningTotal)

	base := result.Aggregation.Sub(freeValue)
	if base.IsNegative() {
		base = decimal.Zero
	}
	paidEvents := result.Count - freeEvents
	if paidEvents < 0 {
		paidEvents = 0
	}

	amount := base.Mul(m.props.rate()).Div(oneHundred)
	amount = amount.Add(m.props.fixedAmount().Mul(decimal.NewFromInt(int64(paidEvents))))

	if m.props.PerTransactionMinAmount != nil && amount.LessThan(*m.props.PerTransactionMinAmount) {
		amount = *m.props.PerTransactionMinAmount
	}
	if m.props.PerTransactionMaxAmount != nil && amount.GreaterThan(*m.props.PerTransactionMaxAmount) {
		amount = *m.props.PerTransactionMaxAmount
	}

	return &Result{
		Amount: amount,
		Units:  result.Aggregation,
		Count:  result.Count,
	}, nil
}

// freeAllowance derives the exempted usage value and the number of fully
// free events from the running-total sequence. With a per-total allowance
// the last entry may overshoot; the exempted value is capped at the
// allowance and the overshooting event is only partially free.
func (m *PercentageModel) freeAllowance(runningTotal []decimal.Decimal) (decimal.Decimal, int) {
	if len(runningTotal) == 0 {
		return decimal.Zero, 0
	}

	freeValue := runningTotal[len(runningTotal)-1]
	freeEvents := len(runningTotal)

	if total := m.props.freeTotal(); total.IsPositive() && freeValue.GreaterThan(total) {
		freeValue = total
		freeEvents = 0
		for _, cumulative := range runningTotal {
			if cumulative.GreaterThan(total) {
				break
			}
			freeEvents++
		}
	}
	return freeValue, freeEvents
}
