package metering

import (
	"context"

	"github.com/shopspring/decimal"
)

// CountAggregator counts matching events. It reads no property, so it can
// never fail on event data.
type CountAggregator struct {
	baseAggregator
}

// Aggregate implements Aggregator
func (a *CountAggregator) Aggregate(ctx context.Context, window Window, _ Options) (*AggregationResult, error) {
	events, err := a.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	return &AggregationResult{
		Aggregation:             decimal.NewFromInt(int64(len(events))),
		PayInAdvanceAggregation: a.payInAdvanceValue(),
		Count:                   len(events),
	}, nil
}
