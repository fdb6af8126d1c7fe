package db

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"testing/fstest"

	"club-app-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gormDB
}

func TestMigrateAppliesInOrderOnce(t *testing.T) {
	gormDB := openSQLite(t)
	files := fstest.MapFS{
		"0002_seed.sql": {Data: []byte("INSERT INTO roles (name) VALUES ('admin')")},
		"0001_init.sql": {Data: []byte("CREATE TABLE roles (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)")},
		"README.md":     {Data: []byte("not a migration")},
	}
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, gormDB, files, logger.Discard()))
	require.NoError(t, Migrate(ctx, gormDB, files, logger.Discard()))

	var roles int64
	require.NoError(t, gormDB.Raw("SELECT COUNT(1) FROM roles").Scan(&roles).Error)
	assert.Equal(t, int64(1), roles)

	var recorded []appliedMigration
	require.NoError(t, gormDB.Table("schema_migrations").Order("filename").Find(&recorded).Error)
	require.Len(t, recorded, 2)
	assert.Equal(t, "0001_init.sql", recorded[0].Filename)
	assert.Len(t, recorded[0].Checksum, 64)
}

func TestMigrateReportsChangedFile(t *testing.T) {
	gormDB := openSQLite(t)
	ctx := context.Background()
	files := fstest.MapFS{
		"0001_init.sql": {Data: []byte("CREATE TABLE levels (id INTEGER PRIMARY KEY)")},
	}
	require.NoError(t, Migrate(ctx, gormDB, files, logger.Discard()))

	files["0001_init.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE levels (id INTEGER PRIMARY KEY, discount REAL)")}
	var buf bytes.Buffer
	require.NoError(t, Migrate(ctx, gormDB, files, logger.New(&buf, slog.LevelInfo, "text")))
	assert.Contains(t, buf.String(), "applied migration changed on disk")
	assert.False(t, gormDB.Migrator().HasColumn("levels", "discount"))
}

func TestMigrateFailureLeavesNoRecord(t *testing.T) {
	gormDB := openSQLite(t)
	files := fstest.MapFS{
		"0001_broken.sql": {Data: []byte("CREATE TABLE")},
	}

	err := Migrate(context.Background(), gormDB, files, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_broken.sql")

	var count int64
	require.NoError(t, gormDB.Raw("SELECT COUNT(1) FROM schema_migrations").Scan(&count).Error)
	assert.Zero(t, count)
}
