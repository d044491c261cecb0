package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestCollectionFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "placements" WHERE id = $1`:            "placements",
		"INSERT INTO `broker_teams` (`id`,`body`) VALUES (?)": "broker_teams",
		`UPDATE sections SET body = $1`:                       "sections",
		`DELETE FROM contracts WHERE id = $1`:                 "contracts",
		`SELECT 1`:                                            "unknown",
	}
	for sql, want := range cases {
		assert.Equal(t, want, collectionFromSQL(sql), sql)
	}
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL(`WITH x AS (SELECT 1) SELECT * FROM x`))
	assert.Equal(t, "INSERT", operationFromSQL(`insert into placements values (1)`))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestTraceLogsFailuresWithCollection(t *testing.T) {
	logs := observeGlobal(t)
	l := NewGormLogger(DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), statement(`INSERT INTO "contracts" ("id") VALUES ($1)`, 0), errors.New("disk full"))

	entries := logs.FilterMessage("docstore.statement").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "contracts", fields["collection"])
	assert.Equal(t, "INSERT", fields["operation"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestTraceIgnoresRecordNotFoundByDefault(t *testing.T) {
	logs := observeGlobal(t)
	l := NewGormLogger(DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), statement(`SELECT * FROM placements`, 0), gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestTraceFlagsSlowStatements(t *testing.T) {
	logs := observeGlobal(t)
	l := NewGormLogger(GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Millisecond})

	l.Trace(context.Background(), time.Now().Add(-time.Second), statement(`SELECT * FROM programmes`, 3), nil)

	entries := logs.FilterMessage("docstore.slow_statement").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "programmes", fields["collection"])
	assert.Equal(t, int64(3), fields["rows_affected"])
	assert.NotContains(t, fields, "sql")
}

func TestSilentLoggerWritesNothing(t *testing.T) {
	logs := observeGlobal(t)
	l := NewGormLogger(DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), statement(`SELECT 1`, 0), errors.New("x"))
	l.Error(context.Background(), "boom")

	assert.Zero(t, logs.Len())
}
