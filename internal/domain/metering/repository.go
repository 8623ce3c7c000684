package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFilter selects the events feeding one aggregation
type EventFilter struct {
	OrganizationID uuid.UUID
	SubscriptionID uuid.UUID
	Code           string
	Group          *Group // nil means no group filtering
	From           time.Time
	To             time.Time // exclusive
}

// EventStore is the read port over the external event stream.
// Implementations must return events ordered by timestamp ascending and
// restricted to [From, To).
type EventStore interface {
	EventsMatching(ctx context.Context, filter EventFilter) ([]*Event, error)
}

// RecurringItemStore tracks items billed by the recurring-count aggregator
// across billing periods. Persistence is owned by an external collaborator;
// the aggregator only reads the set of items still active before the
// current window opened.
type RecurringItemStore interface {
	// ActiveItemIDs returns the identifiers of items added in earlier
	// periods and not removed before the given instant
	ActiveItemIDs(ctx context.Context, subscriptionID, metricID uuid.UUID, before time.Time) ([]string, error)
}
