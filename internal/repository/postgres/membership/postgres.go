package membership

import (
	"context"
	"errors"
	"strings"
	"time"

	billingdomain "club-app-go/internal/domain/billing"
	identitydomain "club-app-go/internal/domain/identity"
	membershipdomain "club-app-go/internal/domain/membership"
	billingrepo "club-app-go/internal/repository/postgres/billing"
	identityrepo "club-app-go/internal/repository/postgres/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 50

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(membershipdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Identity() identitydomain.Repository {
	return identityrepo.Bind(r.db)
}

func (r *PostgresRepository) Ledger() billingdomain.Repository {
	return billingrepo.Bind(r.db)
}

func (r *PostgresRepository) GetProfile(ctx context.Context, memberID int64) (*membershipdomain.Profile, error) {
	var profile membershipdomain.Profile
	if err := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrNotMember
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) SaveProfile(ctx context.Context, profile *membershipdomain.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
}

func (r *PostgresRepository) GetDiscipline(ctx context.Context, id int64) (*membershipdomain.Discipline, error) {
	var discipline membershipdomain.Discipline
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&discipline).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrDisciplineNotFound
		}
		return nil, err
	}
	return &discipline, nil
}

func (r *PostgresRepository) ListDisciplines(ctx context.Context) ([]membershipdomain.Discipline, error) {
	var disciplines []membershipdomain.Discipline
	if err := r.db.WithContext(ctx).Order("name asc").Find(&disciplines).Error; err != nil {
		return nil, err
	}
	return disciplines, nil
}

func (r *PostgresRepository) GetCategory(ctx context.Context, id int64) (*membershipdomain.Category, error) {
	var category membershipdomain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membershipdomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, disciplineID *int64) ([]membershipdomain.Category, error) {
	query := r.db.WithContext(ctx)
	if disciplineID != nil {
		query = query.Where("discipline_id = ?", *disciplineID)
	}
	var categories []membershipdomain.Category
	if err := query.Order("discipline_id asc, name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, filter membershipdomain.MemberFilter) ([]membershipdomain.MemberSummary, int64, error) {
	type memberRow struct {
		MemberID       int64                  `gorm:"column:member_id"`
		Email          string                 `gorm:"column:email"`
		FirstName      string                 `gorm:"column:first_name"`
		LastName       string                 `gorm:"column:last_name"`
		DocumentNumber *string                `gorm:"column:document_number"`
		State          membershipdomain.State `gorm:"column:state"`
		Level          *int                   `gorm:"column:level"`
		DisciplineID   *int64                 `gorm:"column:discipline_id"`
		Discipline     *string                `gorm:"column:discipline"`
		CategoryID     *int64                 `gorm:"column:category_id"`
		Category       *string                `gorm:"column:category"`
		DeactivatedAt  *time.Time             `gorm:"column:deactivated_at"`
	}

	query := r.db.WithContext(ctx).
		Table("membership_profiles").
		Joins("join members on members.id = membership_profiles.member_id").
		Joins("left join membership_levels on membership_levels.id = membership_profiles.level_id").
		Joins("left join disciplines on disciplines.id = membership_profiles.discipline_id").
		Joins("left join categories on categories.id = membership_profiles.category_id")

	if filter.State != "" {
		query = query.Where("membership_profiles.state = ?", filter.State)
	}
	if filter.CategoryID != nil {
		query = query.Where("membership_profiles.category_id = ?", *filter.CategoryID)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"LOWER(members.first_name) LIKE ? OR LOWER(members.last_name) LIKE ? OR LOWER(members.email) LIKE ? OR members.document_number LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []memberRow
	if err := query.
		Select(`membership_profiles.member_id, members.email, members.first_name, members.last_name,
			members.document_number, membership_profiles.state, membership_levels.level,
			membership_profiles.discipline_id, disciplines.name AS discipline,
			membership_profiles.category_id, categories.name AS category,
			membership_profiles.deactivated_at`).
		Order("members.last_name asc, members.first_name asc, membership_profiles.member_id asc").
		Limit(limit).
		Offset(filter.Offset).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	members := make([]membershipdomain.MemberSummary, 0, len(rows))
	for _, row := range rows {
		members = append(members, membershipdomain.MemberSummary{
			MemberID:       row.MemberID,
			Email:          row.Email,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			DocumentNumber: row.DocumentNumber,
			State:          row.State,
			Level:          row.Level,
			DisciplineID:   row.DisciplineID,
			Discipline:     row.Discipline,
			CategoryID:     row.CategoryID,
			Category:       row.Category,
			DeactivatedAt:  row.DeactivatedAt,
		})
	}
	return members, total, nil
}
