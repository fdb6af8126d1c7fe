package identity

import (
	"context"
	"errors"

	identitydomain "club-app-go/internal/domain/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(identitydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateMember(ctx context.Context, member *identitydomain.Member) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return identitydomain.ErrMemberConflict
	}
	return err
}

func (r *PostgresRepository) GetMemberByID(ctx context.Context, id int64) (*identitydomain.Member, error) {
	return r.firstMember(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetMemberByEmail(ctx context.Context, email string) (*identitydomain.Member, error) {
	return r.firstMember(ctx, "email = ?", email)
}

func (r *PostgresRepository) GetMemberByDocument(ctx context.Context, document string) (*identitydomain.Member, error) {
	return r.firstMember(ctx, "document_number = ?", document)
}

func (r *PostgresRepository) GetMemberByScanToken(ctx context.Context, token string) (*identitydomain.Member, error) {
	return r.firstMember(ctx, "scan_token = ?", token)
}

func (r *PostgresRepository) firstMember(ctx context.Context, query string, arg any) (*identitydomain.Member, error) {
	var member identitydomain.Member
	if err := r.db.WithContext(ctx).Where(query, arg).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembersByIDs(ctx context.Context, ids []int64) ([]identitydomain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []identitydomain.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) GetRoleByName(ctx context.Context, name string) (*identitydomain.Role, error) {
	var role identitydomain.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identitydomain.ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *PostgresRepository) ListRoleNames(ctx context.Context, memberID int64) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Table("member_roles").
		Select("roles.name").
		Joins("join roles on roles.id = member_roles.role_id").
		Where("member_roles.member_id = ?", memberID).
		Order("roles.name asc").
		Pluck("roles.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *PostgresRepository) AssignRole(ctx context.Context, memberID, roleID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&identitydomain.MemberRole{MemberID: memberID, RoleID: roleID}).Error
}

func (r *PostgresRepository) RevokeRole(ctx context.Context, memberID, roleID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("member_id = ? AND role_id = ?", memberID, roleID).
		Delete(&identitydomain.MemberRole{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
