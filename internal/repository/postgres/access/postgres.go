package access

import (
	"context"

	accessdomain "club-app-go/internal/domain/access"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AppendLog(ctx context.Context, entry *accessdomain.Log) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresRepository) ListLogs(ctx context.Context, filter accessdomain.LogFilter) ([]accessdomain.Log, int64, error) {
	query := r.db.WithContext(ctx).Model(&accessdomain.Log{})
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var logs []accessdomain.Log
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
