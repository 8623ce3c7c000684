package metering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// MaxAggregator takes the maximum of the metric's property field across the
// window, 0 when no event carries the property.
type MaxAggregator struct {
	baseAggregator
}

// Aggregate implements Aggregator
func (a *MaxAggregator) Aggregate(ctx context.Context, window Window, _ Options) (*AggregationResult, error) {
	events, err := a.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	maximum := decimal.Zero
	counted := 0
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
		counted++
		if v.GreaterThan(maximum) {
			maximum = v
		}
	}

	return &AggregationResult{
		Aggregation:             maximum,
		PayInAdvanceAggregation: a.payInAdvanceValue(),
		Count:                   counted,
	}, nil
}
