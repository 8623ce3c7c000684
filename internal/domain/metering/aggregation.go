package metering

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is the half-open aggregation interval [From, To)
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the timestamp falls inside the window
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && ts.Before(w.To)
}

// Options carries free-unit allowances that drive the running-total
// sequence of the sum aggregator. Nil fields mean no allowance of that
// kind; when both are nil the running total is empty.
type Options struct {
	FreeUnitsPerEvents           *int64
	FreeUnitsPerTotalAggregation *decimal.Decimal
}

// freeEvents returns the per-events allowance, 0 when unset
func (o Options) freeEvents() int64 {
	if o.FreeUnitsPerEvents == nil {
		return 0
	}
	return *o.FreeUnitsPerEvents
}

// freeTotal returns the per-total-aggregation allowance, 0 when unset
func (o Options) freeTotal() decimal.Decimal {
	if o.FreeUnitsPerTotalAggregation == nil {
		return decimal.Zero
	}
	return *o.FreeUnitsPerTotalAggregation
}

// AggregationResult is the outcome of reducing a filtered event set to a
// usage value.
type AggregationResult struct {
	// Aggregation is the usage value over the whole window
	Aggregation decimal.Decimal

	// PayInAdvanceAggregation is the value derived from the single trigger
	// event on the pay-in-advance path. Zero unless a trigger event was
	// supplied to the aggregator.
	PayInAdvanceAggregation decimal.Decimal

	// Count is the number of events that matched the filter
	Count int

	// RunningTotal is the cumulative sum evaluated after each qualifying
	// event while the free allowance is not exhausted. Empty unless the
	// sum aggregator ran with free-unit options.
	RunningTotal []decimal.Decimal
}
