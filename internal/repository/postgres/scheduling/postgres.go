package scheduling

import (
	"context"
	"errors"
	"time"

	schedulingdomain "club-app-go/internal/domain/scheduling"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	createBatchSize = 200
	dateLayout      = "2006-01-02"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(schedulingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("categories").Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateSchedule(ctx context.Context, schedule *schedulingdomain.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *PostgresRepository) GetSchedule(ctx context.Context, id int64) (*schedulingdomain.Schedule, error) {
	var schedule schedulingdomain.Schedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schedulingdomain.ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *PostgresRepository) ListSchedules(ctx context.Context, categoryID int64, activeOnly bool) ([]schedulingdomain.Schedule, error) {
	query := r.db.WithContext(ctx).Where("category_id = ?", categoryID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var schedules []schedulingdomain.Schedule
	if err := query.Order("day_of_week asc, start_time asc, id asc").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *PostgresRepository) SetScheduleActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).Model(&schedulingdomain.Schedule{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return schedulingdomain.ErrScheduleNotFound
	}
	return nil
}

func (r *PostgresRepository) ListSessionDates(ctx context.Context, categoryID int64, from, to time.Time) (map[string]struct{}, error) {
	var dates []time.Time
	if err := r.db.WithContext(ctx).
		Model(&schedulingdomain.Session{}).
		Where("category_id = ? AND date >= ? AND date <= ?", categoryID, from, to).
		Pluck("date", &dates).Error; err != nil {
		return nil, err
	}
	result := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		result[date.UTC().Format(dateLayout)] = struct{}{}
	}
	return result, nil
}

func (r *PostgresRepository) CreateSessions(ctx context.Context, sessions []schedulingdomain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(sessions, createBatchSize).Error
}

func (r *PostgresRepository) GetSession(ctx context.Context, id int64) (*schedulingdomain.Session, error) {
	var session schedulingdomain.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schedulingdomain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresRepository) ListSessions(ctx context.Context, categoryID int64, from, to time.Time) ([]schedulingdomain.Session, error) {
	var sessions []schedulingdomain.Session
	if err := r.db.WithContext(ctx).
		Where("category_id = ? AND date >= ? AND date <= ?", categoryID, from, to).
		Order("date asc").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListParticipants returns the active members of a category.
func (r *PostgresRepository) ListParticipants(ctx context.Context, categoryID int64) ([]schedulingdomain.Participant, error) {
	var participants []schedulingdomain.Participant
	if err := r.db.WithContext(ctx).
		Table("membership_profiles").
		Select("members.id AS member_id, members.first_name, members.last_name").
		Joins("join members on members.id = membership_profiles.member_id").
		Where("membership_profiles.category_id = ? AND membership_profiles.state = ?", categoryID, "active").
		Order("members.last_name asc, members.first_name asc, members.id asc").
		Scan(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresRepository) ListAttendances(ctx context.Context, sessionID int64) ([]schedulingdomain.Attendance, error) {
	var attendances []schedulingdomain.Attendance
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("member_id asc").Find(&attendances).Error; err != nil {
		return nil, err
	}
	return attendances, nil
}

func (r *PostgresRepository) UpsertAttendances(ctx context.Context, attendances []schedulingdomain.Attendance) error {
	if len(attendances) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "recorded_by", "note", "updated_at"}),
		}).
		Create(&attendances).Error
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *schedulingdomain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresRepository) ListEvents(ctx context.Context, filter schedulingdomain.EventFilter) ([]schedulingdomain.Event, error) {
	query := r.db.WithContext(ctx).
		Where("published = ?", true).
		Where("starts_at >= ? AND starts_at <= ?", filter.From, filter.To)

	switch {
	case filter.CategoryID != nil && filter.IncludeGeneral:
		query = query.Where("category_id = ? OR category_id IS NULL", *filter.CategoryID)
	case filter.CategoryID != nil:
		query = query.Where("category_id = ?", *filter.CategoryID)
	case filter.IncludeGeneral:
		query = query.Where("category_id IS NULL")
	}

	var events []schedulingdomain.Event
	if err := query.Order("starts_at asc, id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
