package metering

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/shared"
)

// Aggregator reduces the events of one (metric, subscription, group) to a
// usage value over a window. Implementations are stateless between calls
// and safe to cache for the lifetime of one tuple computation.
type Aggregator interface {
	// Aggregate computes the usage value over [window.From, window.To)
	Aggregate(ctx context.Context, window Window, opts Options) (*AggregationResult, error)
}

// AggregatorParams carries everything needed to build an aggregator for one
// billing subject.
type AggregatorParams struct {
	Metric         *BillableMetric
	SubscriptionID uuid.UUID
	Group          *Group // nil for ungrouped charges

	// TriggerEvent seeds the pay-in-advance computation. When set, the
	// aggregator additionally derives PayInAdvanceAggregation from this
	// single event, independent of the windowed value.
	TriggerEvent *Event

	Events    EventStore
	Recurring RecurringItemStore // required by recurring_count_agg only
}

// NewAggregator builds the aggregator for the metric's aggregation type.
// The switch is exhaustive over the closed AggregationType set; an unknown
// type is a fatal unsupported_model error.
func NewAggregator(p AggregatorParams) (Aggregator, error) {
	if p.Metric == nil {
		return nil, shared.ValidationFailure("aggregator requires a billable metric")
	}
	base := baseAggregator{
		metric:         p.Metric,
		subscriptionID: p.SubscriptionID,
		group:          p.Group,
		trigger:        p.TriggerEvent,
		events:         p.Events,
	}
	switch p.Metric.AggregationType {
	case AggregationTypeCount:
		return &CountAggregator{baseAggregator: base}, nil
	case AggregationTypeSum:
		return &SumAggregator{baseAggregator: base}, nil
	case AggregationTypeMax:
		return &MaxAggregator{baseAggregator: base}, nil
	case AggregationTypeUniqueCount:
		return &UniqueCountAggregator{baseAggregator: base}, nil
	case AggregationTypeRecurringCount:
		if p.Recurring == nil {
			return nil, shared.ValidationFailure("recurring_count_agg requires a recurring item store")
		}
		return &RecurringCountAggregator{baseAggregator: base, recurring: p.Recurring}, nil
	default:
		return nil, shared.UnsupportedModel("aggregation type", string(p.Metric.AggregationType))
	}
}

// baseAggregator holds the filter context shared by all aggregators
type baseAggregator struct {
	metric         *BillableMetric
	subscriptionID uuid.UUID
	group          *Group
	trigger        *Event
	events         EventStore
}

// fetch loads the window's events through the store port
func (a *baseAggregator) fetch(ctx context.Context, window Window) ([]*Event, error) {
	return a.events.EventsMatching(ctx, EventFilter{
		OrganizationID: a.metric.OrganizationID,
		SubscriptionID: a.subscriptionID,
		Code:           a.metric.Code,
		Group:          a.group,
		From:           window.From,
		To:             window.To,
	})
}

// payInAdvanceValue derives the single-event aggregation for the
// pay-in-advance path from the trigger event, zero when no trigger was set
func (a *baseAggregator) payInAdvanceValue() decimal.Decimal {
	return triggerUnits(a.metric, a.trigger)
}
