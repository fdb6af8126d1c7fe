package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"club-app-go/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLog routes gorm records through logger.Logger so queries carry the
// request and trace fields of their context.
type gormLog struct {
	log   logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLog(log logger.Logger, slow time.Duration) *gormLog {
	return &gormLog{log: log, level: gormlogger.Warn, slow: slow}
}

func (g *gormLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLog) Info(ctx context.Context, message string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.WithContext(ctx).Info("db: " + fmt.Sprintf(message, args...))
	}
}

func (g *gormLog) Warn(ctx context.Context, message string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.WithContext(ctx).Warn("db: " + fmt.Sprintf(message, args...))
	}
}

func (g *gormLog) Error(ctx context.Context, message string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.WithContext(ctx).Error("db: " + fmt.Sprintf(message, args...))
	}
}

// Trace reports failed statements and statements slower than the threshold.
// Not-found and duplicate-key errors are answers, not failures.
func (g *gormLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		g.log.WithContext(ctx).InternalError("db: query failed", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.WithContext(ctx).Warn("db: slow query", "sql", sql, "rows", rows, "elapsed", elapsed, "threshold", g.slow)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.WithContext(ctx).Debug("db: query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
