package billing

import (
	"context"
	"testing"
	"time"

	"club-app-go/internal/db/dbtest"
	billingdomain "club-app-go/internal/domain/billing"
	membershipdomain "club-app-go/internal/domain/membership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestOutstandingAndOverdue(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	member := dbtest.Member(t, db, "ana@example.com")

	dues := []billingdomain.Due{
		{MemberID: member.ID, Period: "2024-08", Amount: 15000, DueDate: date(2024, 9, 5)},
		{MemberID: member.ID, Period: "2024-09", Amount: 15000, DueDate: date(2024, 10, 5)},
		{MemberID: member.ID, Period: "2024-10", Amount: 15000, DueDate: date(2024, 11, 5)},
	}
	require.NoError(t, repo.CreateDues(ctx, dues))
	require.NotZero(t, dues[0].ID)

	paidAt := date(2024, 9, 1)
	require.NoError(t, repo.CreatePayments(ctx, []billingdomain.Payment{
		{DueID: dues[0].ID, Amount: 15000, Currency: "ARS", Method: "cash", State: billingdomain.PaymentCompleted, PaidAt: &paidAt},
		{DueID: dues[1].ID, Amount: 15000, Currency: "ARS", Method: "card", State: billingdomain.PaymentFailed},
	}))

	outstanding, err := repo.ListOutstandingDues(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	assert.Equal(t, "2024-09", outstanding[0].Period)
	assert.Equal(t, "2024-10", outstanding[1].Period)

	overdue, err := repo.ListOverdueDues(ctx, member.ID, date(2024, 10, 20))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, dues[1].ID, overdue[0].ID)

	paid, err := repo.HasCompletedPayment(ctx, dues[0].ID)
	require.NoError(t, err)
	assert.True(t, paid)
	paid, err = repo.HasCompletedPayment(ctx, dues[1].ID)
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestListDuesByState(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	member := dbtest.Member(t, db, "ana@example.com")

	dues := []billingdomain.Due{
		{MemberID: member.ID, Period: "2024-08", Amount: 100, DueDate: date(2024, 9, 5)},
		{MemberID: member.ID, Period: "2024-09", Amount: 100, DueDate: date(2024, 10, 5)},
	}
	require.NoError(t, repo.CreateDues(ctx, dues))
	require.NoError(t, repo.CreatePayments(ctx, []billingdomain.Payment{
		{DueID: dues[0].ID, Amount: 100, Currency: "ARS", Method: "cash", State: billingdomain.PaymentCompleted},
	}))

	all, err := repo.ListDues(ctx, billingdomain.DueFilter{MemberID: member.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Paid)
	require.NotNil(t, all[0].PaymentMethod)
	assert.Equal(t, "cash", *all[0].PaymentMethod)
	assert.False(t, all[1].Paid)

	pending, err := repo.ListDues(ctx, billingdomain.DueFilter{MemberID: member.ID, State: billingdomain.DuePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "2024-09", pending[0].Period)

	byPeriod, err := repo.ListDues(ctx, billingdomain.DueFilter{MemberID: member.ID, Period: "2024-08", State: billingdomain.DuePaid})
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
}

func TestSecondCompletedPaymentRejected(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()
	member := dbtest.Member(t, db, "ana@example.com")

	dues := []billingdomain.Due{{MemberID: member.ID, Period: "2024-08", Amount: 100, DueDate: date(2024, 9, 5)}}
	require.NoError(t, repo.CreateDues(ctx, dues))

	first := []billingdomain.Payment{{DueID: dues[0].ID, Amount: 100, Currency: "ARS", Method: "cash", State: billingdomain.PaymentCompleted}}
	require.NoError(t, repo.CreatePayments(ctx, first))

	second := []billingdomain.Payment{{DueID: dues[0].ID, Amount: 100, Currency: "ARS", Method: "cash", State: billingdomain.PaymentCompleted}}
	assert.ErrorIs(t, repo.CreatePayments(ctx, second), billingdomain.ErrDueAlreadyPaid)

	payment, err := repo.GetPayment(ctx, first[0].ID)
	require.NoError(t, err)
	payment.State = billingdomain.PaymentRefunded
	require.NoError(t, repo.UpdatePayment(ctx, payment))
	require.NoError(t, repo.CreatePayments(ctx, second), "a refunded payment frees the due")
}

func TestBillableProfilesAndExistingKeys(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	active := dbtest.Member(t, db, "active@example.com")
	inactive := dbtest.Member(t, db, "inactive@example.com")

	level, err := repo.GetLevelByNumber(ctx, 2)
	require.NoError(t, err)
	_, err = repo.GetLevelByNumber(ctx, 9)
	assert.ErrorIs(t, err, billingdomain.ErrLevelNotFound)

	reason := membershipdomain.DefaultDeactivationReason
	now := time.Now().UTC()
	require.NoError(t, db.Create(&membershipdomain.Profile{MemberID: active.ID, State: membershipdomain.StateActive, LevelID: &level.ID}).Error)
	require.NoError(t, db.Create(&membershipdomain.Profile{
		MemberID: inactive.ID, State: membershipdomain.StateInactive, DeactivatedAt: &now, DeactivationReason: &reason,
	}).Error)

	profiles, err := repo.ListBillableProfiles(ctx, nil)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, active.ID, profiles[0].MemberID)
	assert.InDelta(t, 10.0, profiles[0].Discount, 0.001)

	only := inactive.ID
	profiles, err = repo.ListBillableProfiles(ctx, &only)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	require.NoError(t, repo.CreateDues(ctx, []billingdomain.Due{
		{MemberID: active.ID, Period: "2024-09", Amount: 13500, DueDate: date(2024, 10, 5)},
	}))
	keys, err := repo.ListExistingDueKeys(ctx, []int64{active.ID, inactive.ID}, []string{"2024-09", "2024-10"})
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.Contains(t, keys, billingdomain.DueKey{MemberID: active.ID, Period: "2024-09"})

	levels, err := repo.ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 3)
}
