package metering

import "github.com/google/uuid"

// Group is a named partition of a billable metric. A charge configured with
// group-level parameters produces one fee per group, each computed over the
// subset of events carrying the group's dimension value.
type Group struct {
	ID    uuid.UUID
	Key   string // property name holding the dimension (e.g. "region")
	Value string // dimension value selecting this group (e.g. "europe")
}
