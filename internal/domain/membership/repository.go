package membership

import (
	"context"

	"club-app-go/internal/domain/billing"
	"club-app-go/internal/domain/identity"
)

// Repository is the lifecycle store. Identity and Ledger expose the identity
// and billing stores bound to the same transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Identity() identity.Repository
	Ledger() billing.Repository
	GetProfile(ctx context.Context, memberID int64) (*Profile, error)
	SaveProfile(ctx context.Context, profile *Profile) error
	GetDiscipline(ctx context.Context, id int64) (*Discipline, error)
	ListDisciplines(ctx context.Context) ([]Discipline, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, disciplineID *int64) ([]Category, error)
	ListMembers(ctx context.Context, filter MemberFilter) ([]MemberSummary, int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Billing is the part of the ledger service the lifecycle engine needs.
type Billing interface {
	SettleWithin(ctx context.Context, tx billing.Repository, dues []billing.Due, method, receiptRef string) ([]billing.Payment, error)
	InvalidateStanding(memberID int64)
	Standing(ctx context.Context, memberID int64) (bool, error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
