package metering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// UniqueCountAggregator counts distinct identifier values read from the
// metric's property field, honoring add/remove operation semantics: an add
// makes an identifier active, a remove makes it inactive, and duplicate
// adds are no-ops. Usage is the number of identifiers active at window end.
type UniqueCountAggregator struct {
	baseAggregator
}

// Aggregate implements Aggregator
func (a *UniqueCountAggregator) Aggregate(ctx context.Context, window Window, _ Options) (*AggregationResult, error) {
	events, err := a.fetch(ctx, window)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool)
	for _, event := range events {
		id, present := event.PropertyString(a.metric.FieldName)
		if !present || id == "" {
			continue
		}
		switch op := event.Operation(); op {
		case OperationAdd:
			active[id] = true
		case OperationRemove:
			delete(active, id)
		default:
			return nil, shared.AggregationFailure(
				"event %s has an unknown operation type %q", event.TransactionID, op,
			)
		}
	}

	return &AggregationResult{
		Aggregation:             decimal.NewFromInt(int64(len(active))),
		PayInAdvanceAggregation: a.payInAdvanceValue(),
		Count:                   len(events),
	}, nil
}
