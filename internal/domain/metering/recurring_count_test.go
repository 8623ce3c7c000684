package metering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecurringCountAggregator(t *testing.T, store *memoryEventStore, recurring *memoryRecurringStore, subscriptionID uuid.UUID) Aggregator {
	t.Helper()
	aggregator, err := NewAggregator(AggregatorParams{
		Metric:         newTestMetric(AggregationTypeRecurringCount, "seat_id"),
		SubscriptionID: subscriptionID,
		Events:         store,
		Recurring:      recurring,
	})
	require.NoError(t, err)
	return aggregator
}

func TestRecurringCountAggregator(t *testing.T) {
	ctx := context.Background()
	subscriptionID := uuid.New()

	t.Run("carries items from prior periods", func(t *testing.T) {
		recurring := &memoryRecurringStore{itemIDs: []string{"seat-1", "seat-2"}}
		aggregator := newRecurringCountAggregator(t, &memoryEventStore{}, recurring, subscriptionID)

		result, err := aggregator.Aggregate(ctx, testWindow, Options{})
		require.NoError(t, err)
		assert.True(t, result.Aggregation.Equal(decimal.NewFromInt(2)))
		assert.Zero(t, result.Count)
	})

	t.Run("window adds and removes adjust the carried set", func(t *testing.T) {
		recurring := &memoryRecurringStore{itemIDs: []string{"seat-1", "seat-2"}}
		store := &memoryEventStore{events: []*Event{
			newTestEvent(subscriptionID, "tx-add", time.Hour, map[string]any{"seat_id": "seat-3"}),
			newTestEvent(subscriptionID, "tx-remove", 2*time.Hour, map[string]any{
				"seat_id": "seat-1", "operation_type": "remove",
			}),
		}}
		aggregator := newRecurringCountAggregator(t, store, recurring, subscriptionID)

		result, err := aggregator.Aggregate(ctx, testWindow, Options{})
		require.NoError(t, err)
		// seat-2 carried, seat-3 added, seat-1 removed.
		assert.True(t, result.Aggregation.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, 2, result.Count)
	})

	t.Run("re-adding a carried item is a no-op", func(t *testing.T) {
		recurring := &memoryRecurringStore{itemIDs: []string{"seat-1"}}
		store := &memoryEventStore{events: []*Event{
			newTestEvent(subscriptionID, "tx-dup", time.Hour, map[string]any{"seat_id": "seat-1"}),
		}}
		aggregator := newRecurringCountAggregator(t, store, recurring, subscriptionID)

		result, err := aggregator.Aggregate(ctx, testWindow, Options{})
		require.NoError(t, err)
		assert.True(t, result.Aggregation.Equal(decimal.NewFromInt(1)))
	})

	t.Run("tracking store errors propagate", func(t *testing.T) {
		recurring := &memoryRecurringStore{err: assert.AnError}
		aggregator := newRecurringCountAggregator(t, &memoryEventStore{}, recurring, subscriptionID)

		_, err := aggregator.Aggregate(ctx, testWindow, Options{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
