package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/shared"
)

func TestAggregatorCache(t *testing.T) {
	metric := &metering.BillableMetric{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            "api_calls",
		AggregationType: metering.AggregationTypeCount,
	}
	subscriptionID := uuid.New()
	cache := newAggregatorCache(&stubEventStore{}, &stubRecurringStore{})

	t.Run("same subject returns the same instance", func(t *testing.T) {
		first, err := cache.aggregatorFor(metric, subscriptionID, nil, nil)
		require.NoError(t, err)
		second, err := cache.aggregatorFor(metric, subscriptionID, nil, nil)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("groups are distinct subjects", func(t *testing.T) {
		ungrouped, err := cache.aggregatorFor(metric, subscriptionID, nil, nil)
		require.NoError(t, err)
		grouped, err := cache.aggregatorFor(metric, subscriptionID, &metering.Group{ID: uuid.New(), Key: "region", Value: "eu"}, nil)
		require.NoError(t, err)
		assert.NotSame(t, ungrouped, grouped)
	})

	t.Run("unknown aggregation type surfaces the build error", func(t *testing.T) {
		bad := &metering.BillableMetric{
			BaseEntity:      shared.NewBaseEntity(),
			Code:            "broken",
			AggregationType: "median_agg",
		}
		_, err := cache.aggregatorFor(bad, subscriptionID, nil, nil)
		assert.Error(t, err)
	})
}
