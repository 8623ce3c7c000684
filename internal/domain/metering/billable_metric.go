package metering

import (
	"github.com/google/uuid"

	"github.com/billing/engine/internal/domain/shared"
)

// AggregationType represents how events of a metric are reduced to a usage
// value. The set is closed: dispatch over it is exhaustive and an unknown
// value is an unsupported_model error, never a silent no-op.
type AggregationType string

const (
	// AggregationTypeCount counts matching events
	AggregationTypeCount AggregationType = "count_agg"

	// AggregationTypeSum sums a numeric property across matching events
	AggregationTypeSum AggregationType = "sum_agg"

	// AggregationTypeMax takes the maximum of a numeric property
	AggregationTypeMax AggregationType = "max_agg"

	// AggregationTypeUniqueCount counts distinct identifiers with
	// add/remove semantics
	AggregationTypeUniqueCount AggregationType = "unique_count_agg"

	// AggregationTypeRecurringCount counts active recurring items carried
	// over from prior periods plus net changes in the window
	AggregationTypeRecurringCount AggregationType = "recurring_count_agg"
)

// String returns the string representation of the aggregation type
func (t AggregationType) String() string {
	return string(t)
}

// IsValid returns true if the aggregation type is known
func (t AggregationType) IsValid() bool {
	switch t {
	case AggregationTypeCount,
		AggregationTypeSum,
		AggregationTypeMax,
		AggregationTypeUniqueCount,
		AggregationTypeRecurringCount:
		return true
	}
	return false
}

// AllAggregationTypes returns all valid aggregation types
func AllAggregationTypes() []AggregationType {
	return []AggregationType{
		AggregationTypeCount,
		AggregationTypeSum,
		AggregationTypeMax,
		AggregationTypeUniqueCount,
		AggregationTypeRecurringCount,
	}
}

// ParseAggregationType parses a string into an AggregationType
func ParseAggregationType(s string) (AggregationType, error) {
	t := AggregationType(s)
	if !t.IsValid() {
		return "", shared.UnsupportedModel("aggregation type", s)
	}
	return t, nil
}

// BillableMetric defines how to aggregate events of a given code. It is
// owned by the organization and immutable during a billing computation.
type BillableMetric struct {
	shared.BaseEntity
	OrganizationID  uuid.UUID
	Name            string
	Code            string
	AggregationType AggregationType
	FieldName       string  // property read by sum/max/unique/recurring aggregators
	Groups          []Group // optional group dimensions fanning one charge into several fees
}

// Validate checks the metric definition
func (m *BillableMetric) Validate() error {
	if m.Code == "" {
		return shared.ValidationFailure("billable metric code cannot be empty")
	}
	if !m.AggregationType.IsValid() {
		return shared.UnsupportedModel("aggregation type", string(m.AggregationType))
	}
	if m.AggregationType != AggregationTypeCount && m.FieldName == "" {
		return shared.ValidationFailure("billable metric %s requires a field name for %s", m.Code, m.AggregationType)
	}
	return nil
}

// GroupByID returns the configured group with the given id
func (m *BillableMetric) GroupByID(id uuid.UUID) (*Group, bool) {
	for i := range m.Groups {
		if m.Groups[i].ID == id {
			return &m.Groups[i], true
		}
	}
	return nil, false
}
