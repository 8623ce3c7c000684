package metering

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is an immutable usage fact produced by ingestion. The engine reads
// events, it never creates or mutates them.
type Event struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	SubscriptionID uuid.UUID
	Code           string // billable metric code
	TransactionID  string // dedup key, unique per organization
	Timestamp      time.Time
	Properties     map[string]any
}

// Operation types read from the operation_type property by the
// unique-count and recurring-count aggregators.
const (
	PropertyOperationType = "operation_type"

	OperationAdd    = "add"
	OperationRemove = "remove"
)

// PropertyString returns a property as a string and whether it is present
func (e *Event) PropertyString(field string) (string, bool) {
	v, ok := e.Properties[field]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// PropertyDecimal returns a property coerced to a decimal. The second return
// reports presence; a present but non-coercible value yields an error so
// callers can distinguish a bad data point from a missing one.
func (e *Event) PropertyDecimal(field string) (decimal.Decimal, bool, error) {
	v, ok := e.Properties[field]
	if !ok || v == nil {
		return decimal.Zero, false, nil
	}
	d, err := coerceDecimal(v)
	if err != nil {
		return decimal.Zero, true, err
	}
	return d, true, nil
}

// Operation returns the operation type carried by the event, defaulting to
// add when the property is absent
func (e *Event) Operation() string {
	op, ok := e.PropertyString(PropertyOperationType)
	if !ok || op == "" {
		return OperationAdd
	}
	return strings.ToLower(op)
}

// InWindow reports whether the event falls inside [from, to)
func (e *Event) InWindow(from, to time.Time) bool {
	return !e.Timestamp.Before(from) && e.Timestamp.Before(to)
}

// MatchesGroup reports whether the event carries the group's dimension value
func (e *Event) MatchesGroup(g *Group) bool {
	if g == nil {
		return true
	}
	v, ok := e.PropertyString(g.Key)
	return ok && v == g.Value
}

func coerceDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	default:
		return decimal.Zero, fmt.Errorf("value %v of type %T is not numeric", v, v)
	}
}
