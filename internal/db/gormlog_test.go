package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"club-app-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func traceWith(t *testing.T, level gormlogger.LogLevel, elapsed time.Duration, err error) string {
	t.Helper()
	var buf bytes.Buffer
	log := newGormLog(logger.New(&buf, slog.LevelDebug, "text"), 100*time.Millisecond).LogMode(level)
	log.Trace(context.Background(), time.Now().Add(-elapsed), func() (string, int64) {
		return "SELECT * FROM dues", 3
	}, err)
	return buf.String()
}

func TestGormLogFailures(t *testing.T) {
	out := traceWith(t, gormlogger.Warn, time.Millisecond, errors.New("connection reset"))
	assert.Contains(t, out, "db: query failed")
	assert.Contains(t, out, "SELECT * FROM dues")

	assert.Empty(t, traceWith(t, gormlogger.Warn, time.Millisecond, gorm.ErrRecordNotFound))
	assert.Empty(t, traceWith(t, gormlogger.Warn, time.Millisecond, gorm.ErrDuplicatedKey))
}

func TestGormLogSlowQueries(t *testing.T) {
	assert.Contains(t, traceWith(t, gormlogger.Warn, time.Second, nil), "db: slow query")
	assert.Empty(t, traceWith(t, gormlogger.Warn, time.Millisecond, nil))
	assert.Empty(t, traceWith(t, gormlogger.Silent, time.Second, errors.New("boom")))
}

func TestGormLogInfoTracesEveryQuery(t *testing.T) {
	assert.Contains(t, traceWith(t, gormlogger.Info, time.Millisecond, nil), "db: query")
}
