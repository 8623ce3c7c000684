package metering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// SumAggregator sums the metric's property field across the window. Events
// missing the property contribute neither value nor count; a present but
// non-numeric value fails the whole call with aggregation_failure.
type SumAggregator struct {
	baseAggregator
}

// Aggregate implements Aggregator
func (a *SumAggregator) Aggregate(ctx context.Context, window Window, opts Options) (*AggregationResult, error) {
	events, err := a.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	values := make([]decimal.Decimal, 0, len(events))
	total := decimal.Zero
	for _, event := range events {
		v, present, err := event.PropertyDecimal(a.metric.FieldName)
		if err != nil {
			return nil, shared.AggregationFailure(
				"event %s has a non-numeric value for field %q: %v",
				event.TransactionID, a.metric.FieldName, err,
			)
		}
		if !present {
			continue
		}
		values = append(values, v)
		total = total.Add(v)
	}

	return &AggregationResult{
		Aggregation:             total,
		PayInAdvanceAggregation: a.payInAdvanceValue(),
		Count:                   len(values),
		RunningTotal:            runningTotal(values, opts),
	}, nil
}

// runningTotal builds the cumulative sequence backing free-unit allowances.
// A per-events allowance caps the sequence at that many entries; otherwise a
// per-total allowance includes each cumulative value until the total has
// exceeded it. No allowance at all yields an empty sequence.
func runningTotal(values []decimal.Decimal, opts Options) []decimal.Decimal {
	freeEvents := opts.freeEvents()
	freeTotal := opts.freeTotal()

	switch {
	case freeEvents > 0:
		n := min(int(freeEvents), len(values))
		sequence := make([]decimal.Decimal, 0, n)
		total := decimal.Zero
		for _, v := range values[:n] {
			total = total.Add(v)
			sequence = append(sequence, total)
		}
		return sequence
	case freeTotal.IsPositive():
		sequence := make([]decimal.Decimal, 0, len(values))
		total := decimal.Zero
		for _, v := range values {
			if total.GreaterThan(freeTotal) {
				break
			}
			total = total.Add(v)
			sequence = append(sequence, total)
		}
		return sequence
	default:
		return []decimal.Decimal{}
	}
}
