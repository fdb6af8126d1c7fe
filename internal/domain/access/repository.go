package access

import (
	"context"
	"time"

	"club-app-go/internal/domain/billing"
	"club-app-go/internal/domain/identity"
	"club-app-go/internal/domain/membership"
	"club-app-go/internal/domain/scheduling"
)

type Repository interface {
	AppendLog(ctx context.Context, entry *Log) error
	ListLogs(ctx context.Context, filter LogFilter) ([]Log, int64, error)
}

// MemberFinder resolves scanned codes to members.
type MemberFinder interface {
	GetMemberByScanToken(ctx context.Context, token string) (*identity.Member, error)
	GetMemberByDocument(ctx context.Context, document string) (*identity.Member, error)
	GetMemberByID(ctx context.Context, id int64) (*identity.Member, error)
}

type ProfileReader interface {
	GetProfile(ctx context.Context, memberID int64) (*membership.Profile, error)
}

type DuesReader interface {
	Overdue(ctx context.Context, memberID int64, today time.Time) ([]billing.Due, error)
}

type EventFinder interface {
	NearestEvent(ctx context.Context, categoryID *int64, from, until time.Time) (*scheduling.Event, error)
}
