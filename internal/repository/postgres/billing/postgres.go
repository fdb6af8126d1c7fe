package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"club-app-go/internal/db"
	billingdomain "club-app-go/internal/domain/billing"
	"gorm.io/gorm"
)

const createBatchSize = 500

const completedPaymentExists = "EXISTS (SELECT 1 FROM payments p WHERE p.due_id = dues.id AND p.state = 'completed')"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Bind returns a repository running on db, typically an open transaction.
func Bind(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(billingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) LockMember(ctx context.Context, memberID int64) error {
	return db.LockKey(ctx, r.db, fmt.Sprintf("member:%d", memberID))
}

// LockGeneration serializes due generation runs until the transaction ends.
func (r *PostgresRepository) LockGeneration(ctx context.Context) error {
	return db.LockKey(ctx, r.db, "dues:generate")
}

func (r *PostgresRepository) GetLevelByNumber(ctx context.Context, level int) (*billingdomain.Level, error) {
	var row billingdomain.Level
	if err := r.db.WithContext(ctx).Where("level = ?", level).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billingdomain.ErrLevelNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostgresRepository) ListLevels(ctx context.Context) ([]billingdomain.Level, error) {
	var levels []billingdomain.Level
	if err := r.db.WithContext(ctx).Order("level asc").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *PostgresRepository) GetDue(ctx context.Context, id int64) (*billingdomain.Due, error) {
	var due billingdomain.Due
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&due).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billingdomain.ErrDueNotFound
		}
		return nil, err
	}
	return &due, nil
}

func (r *PostgresRepository) ListDues(ctx context.Context, filter billingdomain.DueFilter) ([]billingdomain.DueStatus, error) {
	type dueRow struct {
		billingdomain.Due
		PaymentID     *int64     `gorm:"column:payment_id"`
		PaymentPaidAt *time.Time `gorm:"column:payment_paid_at"`
		PaymentMethod *string    `gorm:"column:payment_method"`
	}

	query := r.db.WithContext(ctx).
		Table("dues").
		Select("dues.*, payments.id AS payment_id, payments.paid_at AS payment_paid_at, payments.method AS payment_method").
		Joins("left join payments on payments.due_id = dues.id and payments.state = ?", billingdomain.PaymentCompleted).
		Where("dues.member_id = ?", filter.MemberID)

	switch filter.State {
	case billingdomain.DuePending:
		query = query.Where("payments.id IS NULL")
	case billingdomain.DuePaid:
		query = query.Where("payments.id IS NOT NULL")
	}
	if filter.Period != "" {
		query = query.Where("dues.period = ?", filter.Period)
	}

	var rows []dueRow
	if err := query.Order("dues.period asc, dues.id asc").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]billingdomain.DueStatus, 0, len(rows))
	for _, row := range rows {
		result = append(result, billingdomain.DueStatus{
			Due:           row.Due,
			Paid:          row.PaymentID != nil,
			PaidAt:        row.PaymentPaidAt,
			PaymentID:     row.PaymentID,
			PaymentMethod: row.PaymentMethod,
		})
	}
	return result, nil
}

func (r *PostgresRepository) ListOutstandingDues(ctx context.Context, memberID int64) ([]billingdomain.Due, error) {
	var dues []billingdomain.Due
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Where("NOT " + completedPaymentExists).
		Order("period asc, id asc").
		Find(&dues).Error; err != nil {
		return nil, err
	}
	return dues, nil
}

func (r *PostgresRepository) ListOverdueDues(ctx context.Context, memberID int64, before time.Time) ([]billingdomain.Due, error) {
	var dues []billingdomain.Due
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND due_date < ?", memberID, before).
		Where("NOT " + completedPaymentExists).
		Order("period asc, id asc").
		Find(&dues).Error; err != nil {
		return nil, err
	}
	return dues, nil
}

func (r *PostgresRepository) ListBillableProfiles(ctx context.Context, memberID *int64) ([]billingdomain.BillableProfile, error) {
	query := r.db.WithContext(ctx).
		Table("membership_profiles").
		Select("membership_profiles.member_id, membership_profiles.category_id, COALESCE(membership_levels.discount, 0) AS discount").
		Joins("left join membership_levels on membership_levels.id = membership_profiles.level_id").
		Where("membership_profiles.state = ?", "active")
	if memberID != nil {
		query = query.Where("membership_profiles.member_id = ?", *memberID)
	}

	var profiles []billingdomain.BillableProfile
	if err := query.Order("membership_profiles.member_id asc").Scan(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *PostgresRepository) ListExistingDueKeys(ctx context.Context, memberIDs []int64, periods []string) (map[billingdomain.DueKey]struct{}, error) {
	keys := make(map[billingdomain.DueKey]struct{})
	if len(memberIDs) == 0 || len(periods) == 0 {
		return keys, nil
	}

	var rows []billingdomain.DueKey
	if err := r.db.WithContext(ctx).
		Model(&billingdomain.Due{}).
		Select("member_id, period").
		Where("member_id IN ? AND period IN ?", memberIDs, periods).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		keys[row] = struct{}{}
	}
	return keys, nil
}

func (r *PostgresRepository) CreateDues(ctx context.Context, dues []billingdomain.Due) error {
	if len(dues) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(dues, createBatchSize).Error
}

func (r *PostgresRepository) HasCompletedPayment(ctx context.Context, dueID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billingdomain.Payment{}).
		Where("due_id = ? AND state = ?", dueID, billingdomain.PaymentCompleted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreatePayments(ctx context.Context, payments []billingdomain.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(payments).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return billingdomain.ErrDueAlreadyPaid
	}
	return err
}

func (r *PostgresRepository) GetPayment(ctx context.Context, id int64) (*billingdomain.Payment, error) {
	var payment billingdomain.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billingdomain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PostgresRepository) UpdatePayment(ctx context.Context, payment *billingdomain.Payment) error {
	err := r.db.WithContext(ctx).Save(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return billingdomain.ErrDueAlreadyPaid
	}
	return err
}
