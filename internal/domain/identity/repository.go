package identity

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateMember(ctx context.Context, member *Member) error
	GetMemberByID(ctx context.Context, id int64) (*Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*Member, error)
	GetMemberByDocument(ctx context.Context, document string) (*Member, error)
	GetMemberByScanToken(ctx context.Context, token string) (*Member, error)
	ListMembersByIDs(ctx context.Context, ids []int64) ([]Member, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoleNames(ctx context.Context, memberID int64) ([]string, error)
	AssignRole(ctx context.Context, memberID, roleID int64) error
	RevokeRole(ctx context.Context, memberID, roleID int64) (bool, error)
}

// TokenIssuer signs access tokens for authenticated members.
type TokenIssuer interface {
	Issue(memberID int64, email string, roles []string) (string, error)
	TTL() time.Duration
}
