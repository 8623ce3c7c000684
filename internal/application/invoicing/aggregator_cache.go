package invoicing

import (
	"sync"

	"github.com/google/uuid"

	"github.com/billing/engine/internal/domain/metering"
)

// aggregatorCache memoizes aggregators for the lifetime of one tuple
// computation, keyed by the full (metric, subscription, group) identity.
// It is owned by a single service call and never shared across tuples.
type aggregatorCache struct {
	events    metering.EventStore
	recurring metering.RecurringItemStore

	mu    sync.Mutex
	cache map[aggregatorKey]metering.Aggregator
}

type aggregatorKey struct {
	metricCode     string
	subscriptionID uuid.UUID
	groupID        uuid.UUID // uuid.Nil for ungrouped
}

func newAggregatorCache(events metering.EventStore, recurring metering.RecurringItemStore) *aggregatorCache {
	return &aggregatorCache{
		events:    events,
		recurring: recurring,
		cache:     make(map[aggregatorKey]metering.Aggregator),
	}
}

// aggregatorFor returns the cached aggregator for the billing subject,
// building it on first use. Safe for the concurrent group fan-out.
func (c *aggregatorCache) aggregatorFor(
	metric *metering.BillableMetric,
	subscriptionID uuid.UUID,
	group *metering.Group,
	trigger *metering.Event,
) (metering.Aggregator, error) {
	key := aggregatorKey{metricCode: metric.Code, subscriptionID: subscriptionID}
	if group != nil {
		key.groupID = group.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if aggregator, ok := c.cache[key]; ok {
		return aggregator, nil
	}

	aggregator, err := metering.NewAggregator(metering.AggregatorParams{
		Metric:         metric,
		SubscriptionID: subscriptionID,
		Group:          group,
		TriggerEvent:   trigger,
		Events:         c.events,
		Recurring:      c.recurring,
	})
	if err != nil {
		return nil, err
	}
	c.cache[key] = aggregator
	return aggregator, nil
}
