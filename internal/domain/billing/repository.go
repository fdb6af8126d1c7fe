package billing

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	LockMember(ctx context.Context, memberID int64) error
	LockGeneration(ctx context.Context) error
	GetLevelByNumber(ctx context.Context, level int) (*Level, error)
	ListLevels(ctx context.Context) ([]Level, error)
	GetDue(ctx context.Context, id int64) (*Due, error)
	ListDues(ctx context.Context, filter DueFilter) ([]DueStatus, error)
	ListOutstandingDues(ctx context.Context, memberID int64) ([]Due, error)
	ListOverdueDues(ctx context.Context, memberID int64, before time.Time) ([]Due, error)
	ListBillableProfiles(ctx context.Context, memberID *int64) ([]BillableProfile, error)
	ListExistingDueKeys(ctx context.Context, memberIDs []int64, periods []string) (map[DueKey]struct{}, error)
	CreateDues(ctx context.Context, dues []Due) error
	HasCompletedPayment(ctx context.Context, dueID int64) (bool, error)
	CreatePayments(ctx context.Context, payments []Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	UpdatePayment(ctx context.Context, payment *Payment) error
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
