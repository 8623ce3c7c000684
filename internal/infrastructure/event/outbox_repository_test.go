package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func outboxRows(entries ...*OutboxEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event_id", "event_type", "aggregate_type", "aggregate_id",
		"organization_id", "payload", "status", "retry_count", "last_error",
		"next_retry_at", "processed_at", "created_at", "updated_at",
	})
	for _, e := range entries {
		rows.AddRow(e.ID, e.EventID, e.EventType, e.AggregateType, e.AggregateID,
			e.OrganizationID, e.Payload, e.Status, e.RetryCount, e.LastError,
			e.NextRetryAt, e.ProcessedAt, e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func TestOutboxRepositorySave(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	entry := NewOutboxEntry(newTestEvent(), []byte(`{"test":true}`))

	// gorm issues a plain Exec for this insert, not a RETURNING query
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "event_outbox"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(ctx, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositorySaveEmpty(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewOutboxRepository(db)

	assert.NoError(t, repo.Save(context.Background()))
}

func TestOutboxRepositoryFindDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	pending := NewOutboxEntry(newTestEvent(), []byte("{}"))
	failed := NewOutboxEntry(newTestEvent(), []byte("{}"))
	failed.MarkFailed("transient")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "event_outbox"`)).
		WillReturnRows(outboxRows(pending, failed))

	due, err := repo.FindDue(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, pending.EventID, due[0].EventID)
	assert.Equal(t, failed.EventID, due[1].EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositoryMarkProcessing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	entry := NewOutboxEntry(newTestEvent(), []byte("{}"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "event_outbox" .* FOR UPDATE SKIP LOCKED`).
		WillReturnRows(outboxRows(entry))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "event_outbox"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, OutboxStatusProcessing, claimed[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositoryMarkProcessingEmpty(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewOutboxRepository(db)

	claimed, err := repo.MarkProcessing(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestOutboxRepositoryUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	entry := NewOutboxEntry(newTestEvent(), []byte("{}"))
	entry.MarkSent()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "event_outbox"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(ctx, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositoryDeleteSentBefore(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "event_outbox"`)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	deleted, err := repo.DeleteSentBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepositoryCountByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT status, count\(\*\) as count FROM "event_outbox"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(OutboxStatusPending, 3).
			AddRow(OutboxStatusSent, 7))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[OutboxStatusPending])
	assert.Equal(t, int64(7), counts[OutboxStatusSent])
	assert.NoError(t, mock.ExpectationsWereMet())
}
