package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"club-app-go/pkg/logger"
	"gorm.io/gorm"
)

const migrationLockKey = "schema_migrations"

type appliedMigration struct {
	Filename string
	Checksum string
}

// Migrate applies every *.sql file of files in lexical order. Each file runs
// in its own transaction together with its schema_migrations row, under an
// advisory lock so that instances starting together apply it once. A file
// whose content changed after it was applied is reported and left alone.
func Migrate(ctx context.Context, db *gorm.DB, files fs.FS, log logger.Logger) error {
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return err
	}

	names, err := migrationNames(files)
	if err != nil {
		return err
	}

	for _, name := range names {
		contents, err := fs.ReadFile(files, name)
		if err != nil {
			return err
		}
		sql := strings.TrimSpace(string(contents))
		if sql == "" {
			continue
		}
		sum := sha256.Sum256([]byte(sql))
		checksum := hex.EncodeToString(sum[:])

		applied := false
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := LockKey(ctx, tx, migrationLockKey); err != nil {
				return err
			}
			previous, err := findMigration(tx, name)
			if err != nil {
				return err
			}
			if previous != nil {
				if previous.Checksum != "" && previous.Checksum != checksum {
					log.Warn("db: applied migration changed on disk", "file", name)
				}
				return nil
			}
			if err := tx.Exec(sql).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			applied = true
			return recordMigration(tx, name, checksum)
		})
		if err != nil {
			return err
		}
		if applied {
			log.Info("db: migration applied", "file", name)
		}
	}

	return nil
}

func migrationNames(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func ensureSchemaMigrations(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL
		)
	`).Error
	if err != nil {
		return err
	}
	if db.Migrator().HasColumn("schema_migrations", "checksum") {
		return nil
	}
	return db.WithContext(ctx).Exec("ALTER TABLE schema_migrations ADD COLUMN checksum TEXT NOT NULL DEFAULT ''").Error
}

func findMigration(tx *gorm.DB, name string) (*appliedMigration, error) {
	var row appliedMigration
	err := tx.Table("schema_migrations").Select("filename, checksum").Where("filename = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func recordMigration(tx *gorm.DB, name, checksum string) error {
	return tx.Exec(
		"INSERT INTO schema_migrations (filename, checksum, applied_at) VALUES (?, ?, ?)",
		name, checksum, time.Now().UTC(),
	).Error
}
