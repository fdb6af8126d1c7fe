package db

import (
	"context"

	"gorm.io/gorm"
)

// LockKey takes a transaction-scoped advisory lock on key. It must run inside
// a transaction. Dialects without advisory locks serialize writers already.
func LockKey(ctx context.Context, tx *gorm.DB, key string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
