package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/metering"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	return db
}

func saveEvent(t *testing.T, store *GormEventStore, event *metering.Event) {
	t.Helper()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	require.NoError(t, store.SaveEvent(context.Background(), event))
}

func TestGormEventStore_EventsMatching(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormEventStore(db)
	ctx := context.Background()

	orgID := uuid.New()
	subID := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := metering.EventFilter{
		OrganizationID: orgID,
		SubscriptionID: subID,
		Code:           "api_calls",
		From:           base,
		To:             base.AddDate(0, 1, 0),
	}

	// Insert out of order to exercise the timestamp sort.
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-2", Timestamp: base.Add(48 * time.Hour),
		Properties: map[string]any{"value": 2},
	})
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-1", Timestamp: base.Add(24 * time.Hour),
		Properties: map[string]any{"value": 1},
	})

	// Outside the window, wrong code, wrong subscription.
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-late", Timestamp: window.To,
	})
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "storage_gb",
		TransactionID: "tx-other-code", Timestamp: base.Add(time.Hour),
	})
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: uuid.New(), Code: "api_calls",
		TransactionID: "tx-other-sub", Timestamp: base.Add(time.Hour),
	})

	t.Run("returns window events ordered by timestamp", func(t *testing.T) {
		events, err := store.EventsMatching(ctx, window)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "tx-1", events[0].TransactionID)
		assert.Equal(t, "tx-2", events[1].TransactionID)
	})

	t.Run("upper bound is exclusive", func(t *testing.T) {
		filter := window
		filter.To = base.Add(48 * time.Hour)
		events, err := store.EventsMatching(ctx, filter)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "tx-1", events[0].TransactionID)
	})

	t.Run("properties survive the round trip", func(t *testing.T) {
		events, err := store.EventsMatching(ctx, window)
		require.NoError(t, err)
		require.NotEmpty(t, events)

		value, present, err := events[0].PropertyDecimal("value")
		require.NoError(t, err)
		assert.True(t, present)
		assert.True(t, value.Equal(decimal.NewFromInt(1)))
	})

	t.Run("empty window yields no events", func(t *testing.T) {
		filter := window
		filter.From = base.AddDate(0, 2, 0)
		filter.To = base.AddDate(0, 3, 0)
		events, err := store.EventsMatching(ctx, filter)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestGormEventStore_GroupFiltering(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormEventStore(db)
	ctx := context.Background()

	orgID := uuid.New()
	subID := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-eu", Timestamp: base.Add(time.Hour),
		Properties: map[string]any{"region": "eu"},
	})
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-us", Timestamp: base.Add(2 * time.Hour),
		Properties: map[string]any{"region": "us"},
	})
	saveEvent(t, store, &metering.Event{
		OrganizationID: orgID, SubscriptionID: subID, Code: "api_calls",
		TransactionID: "tx-none", Timestamp: base.Add(3 * time.Hour),
	})

	events, err := store.EventsMatching(ctx, metering.EventFilter{
		OrganizationID: orgID,
		SubscriptionID: subID,
		Code:           "api_calls",
		Group:          &metering.Group{ID: uuid.New(), Key: "region", Value: "eu"},
		From:           base,
		To:             base.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "tx-eu", events[0].TransactionID)
}
