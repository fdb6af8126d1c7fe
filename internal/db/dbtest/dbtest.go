// Package dbtest opens throwaway in-memory databases for repository tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"club-app-go/internal/domain/access"
	"club-app-go/internal/domain/billing"
	"club-app-go/internal/domain/identity"
	"club-app-go/internal/domain/membership"
	"club-app-go/internal/domain/scheduling"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated and seeded sqlite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gormDB.AutoMigrate(
		&identity.Member{},
		&identity.Role{},
		&identity.MemberRole{},
		&billing.Level{},
		&billing.Due{},
		&billing.Payment{},
		&membership.Discipline{},
		&membership.Category{},
		&membership.Profile{},
		&scheduling.Schedule{},
		&scheduling.Session{},
		&scheduling.Attendance{},
		&scheduling.Event{},
		&access.Log{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	statements := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_due_completed ON payments (due_id) WHERE state = 'completed'",
		"INSERT INTO roles (name) VALUES ('admin'), ('dirigente'), ('profesor'), ('socio')",
		"INSERT INTO membership_levels (level, discount, description) VALUES (1, 0, 'Base'), (2, 10, 'Family'), (3, 25, 'Honorary')",
	}
	for _, statement := range statements {
		if err := gormDB.Exec(statement).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return gormDB
}

// Member inserts a member with the given email and returns it.
func Member(t testing.TB, db *gorm.DB, email string) identity.Member {
	t.Helper()
	member := identity.Member{
		Email:        email,
		FirstName:    "Test",
		LastName:     email,
		PasswordHash: "x",
		ScanToken:    uuid.NewString(),
		Active:       true,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}
