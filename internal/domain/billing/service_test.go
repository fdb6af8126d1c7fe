package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-app-go/internal/domain/identity"
)

var (
	fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	admin    = identity.Actor{ID: 1000, Roles: []string{identity.RoleAdmin}}
)

func newTestService(repo *fakeBillingRepo, cache StandingCache) *Service {
	svc := NewService(repo, NewSimulatedGateway([]string{"declined_card"}), cache, Options{BaseAmount: 15000, DueDay: 5})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateMonthlyCreatesOneDuePerActiveProfile(t *testing.T) {
	repo := newFakeBillingRepo()
	category := int64(3)
	repo.profiles[1] = BillableProfile{MemberID: 1, CategoryID: &category}
	repo.profiles[2] = BillableProfile{MemberID: 2, Discount: 10}
	svc := newTestService(repo, nil)

	report, err := svc.GenerateMonthly(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.Created != 2 || report.Skipped != 0 || report.Period != "2024-03" {
		t.Fatalf("unexpected report %+v", report)
	}
	if repo.createDues != 1 {
		t.Fatalf("expected a single bulk insert, got %d", repo.createDues)
	}

	for _, due := range repo.dues {
		if !due.DueDate.Equal(date(2024, 4, 5)) {
			t.Fatalf("expected due date 2024-04-05, got %v", due.DueDate)
		}
		switch due.MemberID {
		case 1:
			if due.Amount != 15000 || due.CategoryID == nil || *due.CategoryID != 3 {
				t.Fatalf("unexpected due for member 1: %+v", due)
			}
		case 2:
			if due.Amount != 13500 || due.DiscountApplied != 10 {
				t.Fatalf("unexpected due for member 2: %+v", due)
			}
		}
	}

	report, err = svc.GenerateMonthly(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if report.Created != 0 || report.Skipped != 2 || len(repo.dues) != 2 {
		t.Fatalf("expected rerun to skip everything, got %+v with %d dues", report, len(repo.dues))
	}
}

func TestGenerateMonthlyRejectsBadPeriod(t *testing.T) {
	svc := newTestService(newFakeBillingRepo(), nil)
	if _, err := svc.GenerateMonthly(context.Background(), "2024-13"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestGenerateMonthlyDecemberRollsIntoNextYear(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.profiles[1] = BillableProfile{MemberID: 1}
	svc := newTestService(repo, nil)

	if _, err := svc.GenerateMonthly(context.Background(), "2023-12"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, due := range repo.dues {
		if !due.DueDate.Equal(date(2024, 1, 5)) {
			t.Fatalf("expected 2024-01-05, got %v", due.DueDate)
		}
	}
}

func TestBackfillCountsCreatedAndSkipped(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.profiles[1] = BillableProfile{MemberID: 1}
	repo.profiles[2] = BillableProfile{MemberID: 2}
	repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	svc := newTestService(repo, nil)

	report, err := svc.Backfill(context.Background(), BackfillInput{From: "2024-01", To: "2024-03"})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if report.Months != 3 || report.Created != 5 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if repo.createDues != 1 {
		t.Fatalf("expected one bulk insert, got %d", repo.createDues)
	}
}

func TestBackfillSingleMember(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.profiles[1] = BillableProfile{MemberID: 1}
	repo.profiles[2] = BillableProfile{MemberID: 2}
	svc := newTestService(repo, nil)
	member := int64(2)

	report, err := svc.Backfill(context.Background(), BackfillInput{From: "2024-01", To: "2024-02", MemberID: &member})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if report.Created != 2 {
		t.Fatalf("expected 2 dues, got %+v", report)
	}
	for _, due := range repo.dues {
		if due.MemberID != 2 {
			t.Fatalf("unexpected member %d", due.MemberID)
		}
	}

	missing := int64(9)
	if _, err := svc.Backfill(context.Background(), BackfillInput{From: "2024-01", To: "2024-02", MemberID: &missing}); !errors.Is(err, ErrMemberNotEligible) {
		t.Fatalf("expected ErrMemberNotEligible, got %v", err)
	}
}

func TestBackfillLocksAndInvalidatesStanding(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.profiles[1] = BillableProfile{MemberID: 1}
	repo.profiles[2] = BillableProfile{MemberID: 2}
	cache := newFakeStandingCache()
	cache.Set(1, true, time.Minute)
	cache.Set(3, true, time.Minute)
	svc := newTestService(repo, cache)
	member := int64(1)

	if _, err := svc.Backfill(context.Background(), BackfillInput{From: "2024-01", To: "2024-02", MemberID: &member}); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if len(repo.calls) != 2 || repo.calls[0] != "lock" || repo.calls[1] != "existing" {
		t.Fatalf("expected generation lock before the existence check, got %v", repo.calls)
	}
	if _, ok := cache.Get(1); ok {
		t.Fatalf("expected standing of billed member to be invalidated")
	}
	if _, ok := cache.Get(3); !ok {
		t.Fatalf("expected standing of other members to be kept")
	}
	if upToDate, err := svc.Standing(context.Background(), 1); err != nil || upToDate {
		t.Fatalf("expected backfilled overdue dues to show, got %v %v", upToDate, err)
	}

	repo.calls = nil
	cache.Set(2, true, time.Minute)
	if _, err := svc.GenerateMonthly(context.Background(), "2024-01"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(repo.calls) == 0 || repo.calls[0] != "lock" {
		t.Fatalf("expected monthly generation to take the lock, got %v", repo.calls)
	}
	if _, ok := cache.Get(2); ok {
		t.Fatalf("expected standing of member 2 to be invalidated")
	}
}

func TestBackfillValidatesRange(t *testing.T) {
	svc := newTestService(newFakeBillingRepo(), nil)
	if _, err := svc.Backfill(context.Background(), BackfillInput{From: "2024-05", To: "2024-01"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reversed range, got %v", err)
	}
	if _, err := svc.Backfill(context.Background(), BackfillInput{From: "2000-01", To: "2024-01"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long range, got %v", err)
	}
}

func TestOutstandingOnlyExcludesCompletedPayments(t *testing.T) {
	repo := newFakeBillingRepo()
	completed := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	initiated := repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	refunded := repo.addDue(1, "2024-03", 15000, date(2024, 4, 5))
	failed := repo.addDue(1, "2024-04", 15000, date(2024, 5, 5))
	repo.addPayment(completed.ID, PaymentCompleted)
	repo.addPayment(initiated.ID, PaymentInitiated)
	repo.addPayment(refunded.ID, PaymentRefunded)
	repo.addPayment(failed.ID, PaymentFailed)
	svc := newTestService(repo, nil)

	dues, err := svc.Outstanding(context.Background(), 1)
	if err != nil {
		t.Fatalf("outstanding: %v", err)
	}
	if len(dues) != 3 {
		t.Fatalf("expected 3 outstanding dues, got %d", len(dues))
	}
	if TotalAmount(dues) != 45000 {
		t.Fatalf("expected total 45000, got %v", TotalAmount(dues))
	}
}

func TestRegisterPaymentsSettlesOnlySelectedDues(t *testing.T) {
	repo := newFakeBillingRepo()
	first := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	second := repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	other := repo.addDue(2, "2024-02", 15000, date(2024, 3, 5))
	cache := newFakeStandingCache()
	svc := newTestService(repo, cache)

	payments, err := svc.RegisterPayments(context.Background(), admin, 1, RegisterPaymentsInput{
		DueIDs:     []int64{first.ID, other.ID},
		Method:     "cash",
		ReceiptRef: " R-1 ",
	})
	if err != nil {
		t.Fatalf("register payments: %v", err)
	}
	if len(payments) != 1 || payments[0].DueID != first.ID || payments[0].State != PaymentCompleted {
		t.Fatalf("unexpected payments %+v", payments)
	}
	if payments[0].ReceiptRef == nil || *payments[0].ReceiptRef != "R-1" || payments[0].Currency != "ARS" {
		t.Fatalf("unexpected payment fields %+v", payments[0])
	}
	if cache.deletes != 1 {
		t.Fatalf("expected standing invalidation")
	}

	outstanding, _ := svc.Outstanding(context.Background(), 1)
	if len(outstanding) != 1 || outstanding[0].ID != second.ID {
		t.Fatalf("expected only the second due outstanding, got %+v", outstanding)
	}

	if _, err := svc.RegisterPayments(context.Background(), admin, 1, RegisterPaymentsInput{DueIDs: []int64{first.ID}, Method: "cash"}); !errors.Is(err, ErrNothingToPay) {
		t.Fatalf("expected ErrNothingToPay for already paid due, got %v", err)
	}
}

func TestRegisterPaymentsIsAtomic(t *testing.T) {
	repo := newFakeBillingRepo()
	first := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	second := repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	repo.failPayment = errors.New("insert failed")
	svc := newTestService(repo, nil)

	_, err := svc.RegisterPayments(context.Background(), admin, 1, RegisterPaymentsInput{DueIDs: []int64{first.ID, second.ID}, Method: "cash"})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if len(repo.payments) != 0 {
		t.Fatalf("expected no payments after rollback, got %d", len(repo.payments))
	}
}

func TestRegisterPaymentsRequiresManagerAndMethod(t *testing.T) {
	repo := newFakeBillingRepo()
	due := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	svc := newTestService(repo, nil)
	self := identity.Actor{ID: 1, Roles: []string{identity.RoleMember}}

	if _, err := svc.RegisterPayments(context.Background(), self, 1, RegisterPaymentsInput{DueIDs: []int64{due.ID}, Method: "cash"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.RegisterPayments(context.Background(), admin, 1, RegisterPaymentsInput{DueIDs: []int64{due.ID}}); !errors.Is(err, ErrPaymentMethodMissing) {
		t.Fatalf("expected ErrPaymentMethodMissing, got %v", err)
	}
}

func TestCheckoutApprovedAndDeclined(t *testing.T) {
	repo := newFakeBillingRepo()
	first := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	second := repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	svc := newTestService(repo, nil)
	member := identity.Actor{ID: 1, Roles: []string{identity.RoleMember}}

	payment, err := svc.Checkout(context.Background(), member, first.ID, "credit_card")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if payment.State != PaymentCompleted || payment.ExternalReference == nil || payment.PaidAt == nil || len(payment.Detail) == 0 {
		t.Fatalf("unexpected approved payment %+v", payment)
	}

	payment, err = svc.Checkout(context.Background(), member, second.ID, "declined_card")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if payment.State != PaymentFailed || payment.PaidAt != nil {
		t.Fatalf("expected failed payment, got %+v", payment)
	}

	outstanding, _ := svc.Outstanding(context.Background(), 1)
	if len(outstanding) != 1 || outstanding[0].ID != second.ID {
		t.Fatalf("declined checkout must leave due outstanding, got %+v", outstanding)
	}

	if _, err := svc.Checkout(context.Background(), member, first.ID, "credit_card"); !errors.Is(err, ErrDueAlreadyPaid) {
		t.Fatalf("expected ErrDueAlreadyPaid, got %v", err)
	}
}

func TestCheckoutRejectsOtherMembersDue(t *testing.T) {
	repo := newFakeBillingRepo()
	due := repo.addDue(2, "2024-01", 15000, date(2024, 2, 5))
	svc := newTestService(repo, nil)

	_, err := svc.Checkout(context.Background(), identity.Actor{ID: 1}, due.ID, "credit_card")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Checkout(context.Background(), identity.Actor{ID: 1}, 999, "credit_card"); !errors.Is(err, ErrDueNotFound) {
		t.Fatalf("expected ErrDueNotFound, got %v", err)
	}
}

func TestRefundReopensDue(t *testing.T) {
	repo := newFakeBillingRepo()
	due := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	payment := repo.addPayment(due.ID, PaymentCompleted)
	svc := newTestService(repo, nil)

	if _, err := svc.Refund(context.Background(), identity.Actor{ID: 5, Roles: []string{identity.RoleLeader}}, payment.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	refunded, err := svc.Refund(context.Background(), admin, payment.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.State != PaymentRefunded {
		t.Fatalf("expected refunded, got %s", refunded.State)
	}

	outstanding, _ := svc.Outstanding(context.Background(), 1)
	if len(outstanding) != 1 {
		t.Fatalf("expected due to be outstanding after refund")
	}

	if _, err := svc.Refund(context.Background(), admin, payment.ID); !errors.Is(err, ErrPaymentNotRefundable) {
		t.Fatalf("expected ErrPaymentNotRefundable, got %v", err)
	}
}

func TestStandingUsesCacheAndOverdueDues(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.addDue(1, "2024-03", 15000, date(2024, 4, 5))
	overdue := repo.addDue(2, "2024-01", 15000, date(2024, 2, 5))
	cache := newFakeStandingCache()
	svc := newTestService(repo, cache)
	ctx := context.Background()

	upToDate, err := svc.Standing(ctx, 1)
	if err != nil || !upToDate {
		t.Fatalf("expected member with future due to be up to date, got %v %v", upToDate, err)
	}
	upToDate, err = svc.Standing(ctx, 2)
	if err != nil || upToDate {
		t.Fatalf("expected member with overdue due to be behind, got %v %v", upToDate, err)
	}

	repo.addPayment(overdue.ID, PaymentCompleted)
	if upToDate, _ := svc.Standing(ctx, 2); upToDate {
		t.Fatalf("expected cached answer before invalidation")
	}
	svc.InvalidateStanding(2)
	if upToDate, _ := svc.Standing(ctx, 2); !upToDate {
		t.Fatalf("expected fresh answer after invalidation")
	}
}

func TestListDuesScopesToOwnDues(t *testing.T) {
	repo := newFakeBillingRepo()
	paid := repo.addDue(1, "2024-01", 15000, date(2024, 2, 5))
	repo.addDue(1, "2024-02", 15000, date(2024, 3, 5))
	repo.addPayment(paid.ID, PaymentCompleted)
	svc := newTestService(repo, nil)
	self := identity.Actor{ID: 1, Roles: []string{identity.RoleMember}}

	if _, err := svc.ListDues(context.Background(), self, DueFilter{MemberID: 2}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	pending, err := svc.ListDues(context.Background(), self, DueFilter{MemberID: 1, State: DuePending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].Period != "2024-02" {
		t.Fatalf("unexpected pending dues %+v", pending)
	}

	byPeriod, err := svc.ListDues(context.Background(), admin, DueFilter{MemberID: 1, Period: "2024-01"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byPeriod) != 1 || !byPeriod[0].Paid {
		t.Fatalf("unexpected dues for period %+v", byPeriod)
	}

	if _, err := svc.ListDues(context.Background(), self, DueFilter{MemberID: 1, State: "overdue"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
