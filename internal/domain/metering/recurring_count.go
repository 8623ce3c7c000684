package metering

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// RecurringCountAggregator counts recurring items that remain active:
// identifiers added in prior periods (read from the external tracking
// store) carried into this window, plus net adds and removes inside it.
type RecurringCountAggregator struct {
	baseAggregator
	recurring RecurringItemStore
}

// Aggregate implements Aggregator
func (a *RecurringCountAggregator) Aggregate(ctx context.Context, window Window, _ Options) (*AggregationResult, error) {
	carried, err := a.recurring.ActiveItemIDs(ctx, a.subscriptionID, a.metric.ID, window.From)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool, len(carried))
	for _, id := range carried {
		active[id] = true
	}

	events, err := a.fetch(ctx, window)
	if err != nil {
		return nil, err
	}
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
