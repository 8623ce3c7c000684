package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, observed := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), observed
}

func TestGormLoggerTrace(t *testing.T) {
	fc := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), fc, nil)
		assert.Zero(t, observed.Len())
	})

	t.Run("query logged at info", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Info)
		gl.Trace(context.Background(), time.Now(), fc, nil)
		require.Equal(t, 1, observed.Len())
		assert.Equal(t, "SQL Query", observed.All()[0].Message)
	})

	t.Run("error logged with fields", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), fc, assert.AnError)
		require.Equal(t, 1, observed.Len())
		entry := observed.All()[0]
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
	})

	t.Run("record not found ignored by default", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Zero(t, observed.Len())
	})

	t.Run("slow query warned", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
		require.Equal(t, 1, observed.Len())
		assert.Contains(t, observed.All()[0].Message, "SLOW SQL")
	})

	t.Run("organization carried from context", func(t *testing.T) {
		gl, observed := newObservedGormLogger(gormlogger.Info)
		ctx, _ := WithOrganizationID(context.Background(), zap.NewNop(), "org-1")
		gl.Trace(ctx, time.Now(), fc, nil)
		require.Equal(t, 1, observed.Len())
		assert.Equal(t, "org-1", observed.All()[0].ContextMap()["organization_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
