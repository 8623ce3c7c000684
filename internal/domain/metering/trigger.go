package metering

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// TriggerAggregation derives the aggregation for one freshly ingested event
// without touching the event store. The pay-in-advance path runs on the
// ingestion thread of control, so it must stay bounded: the trigger event
// alone decides the value.
func TriggerAggregation(metric *BillableMetric, trigger *Event) (*AggregationResult, error) {
	if metric == nil || trigger == nil {
		return nil, shared.ValidationFailure("trigger aggregation requires a metric and an event")
	}
	if !metric.AggregationType.IsValid() {
		return nil, shared.UnsupportedModel("aggregation type", string(metric.AggregationType))
	}

	value := triggerUnits(metric, trigger)
	return &AggregationResult{
		Aggregation:             value,
		PayInAdvanceAggregation: value,
		Count:                   1,
	}, nil
}

// triggerUnits is the single-event usage value per aggregation type: one
// unit for count, the property value for sum and max, one unit for an
// identifier-adding event under the counting-by-identity types. An absent
// or non-numeric property yields zero rather than a failure, the event was
// already accepted by ingestion.
func triggerUnits(metric *BillableMetric, trigger *Event) decimal.Decimal {
	if trigger == nil {
		return decimal.Zero
	}
	switch metric.AggregationType {
	case AggregationTypeCount:
		return decimal.NewFromInt(1)
	case AggregationTypeSum, AggregationTypeMax:
		v, present, err := trigger.PropertyDecimal(metric.FieldName)
		if !present || err != nil {
			return decimal.Zero
		}
		return v
	case AggregationTypeUniqueCount, AggregationTypeRecurringCount:
		if trigger.Operation() != OperationAdd {
			return decimal.Zero
		}
		if id, present := trigger.PropertyString(metric.FieldName); present && id != "" {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
