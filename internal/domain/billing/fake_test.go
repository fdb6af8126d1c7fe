package billing

import (
	"context"
	"errors"
	"sort"
	"time"
)

type fakeBillingRepo struct {
	levels      []Level
	profiles    map[int64]BillableProfile
	dues        map[int64]Due
	payments    map[int64]Payment
	nextDueID   int64
	nextPayID   int64
	createDues  int
	failPayment error
	calls       []string
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		levels:   []Level{{ID: 1, Level: 1}, {ID: 2, Level: 2, Discount: 10}},
		profiles: make(map[int64]BillableProfile),
		dues:     make(map[int64]Due),
		payments: make(map[int64]Payment),
	}
}

func (r *fakeBillingRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	dues := make(map[int64]Due, len(r.dues))
	for k, v := range r.dues {
		dues[k] = v
	}
	payments := make(map[int64]Payment, len(r.payments))
	for k, v := range r.payments {
		payments[k] = v
	}
	if err := fn(r); err != nil {
		r.dues = dues
		r.payments = payments
		return err
	}
	return nil
}

func (r *fakeBillingRepo) LockMember(ctx context.Context, memberID int64) error {
	return nil
}

func (r *fakeBillingRepo) LockGeneration(ctx context.Context) error {
	r.calls = append(r.calls, "lock")
	return nil
}

func (r *fakeBillingRepo) GetLevelByNumber(ctx context.Context, level int) (*Level, error) {
	for _, l := range r.levels {
		if l.Level == level {
			copied := l
			return &copied, nil
		}
	}
	return nil, ErrLevelNotFound
}

func (r *fakeBillingRepo) ListLevels(ctx context.Context) ([]Level, error) {
	return append([]Level(nil), r.levels...), nil
}

func (r *fakeBillingRepo) GetDue(ctx context.Context, id int64) (*Due, error) {
	due, ok := r.dues[id]
	if !ok {
		return nil, ErrDueNotFound
	}
	return &due, nil
}

func (r *fakeBillingRepo) settlingPayment(dueID int64) *Payment {
	for _, p := range r.payments {
		if p.DueID == dueID && p.State == PaymentCompleted {
			copied := p
			return &copied
		}
	}
	return nil
}

func (r *fakeBillingRepo) sortedDues() []Due {
	result := make([]Due, 0, len(r.dues))
	for _, due := range r.dues {
		result = append(result, due)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *fakeBillingRepo) ListDues(ctx context.Context, filter DueFilter) ([]DueStatus, error) {
	result := make([]DueStatus, 0)
	for _, due := range r.sortedDues() {
		if due.MemberID != filter.MemberID {
			continue
		}
		if filter.Period != "" && due.Period != filter.Period {
			continue
		}
		status := DueStatus{Due: due}
		if p := r.settlingPayment(due.ID); p != nil {
			status.Paid = true
			status.PaidAt = p.PaidAt
			status.PaymentID = &p.ID
			status.PaymentMethod = &p.Method
		}
		if filter.State == DuePaid && !status.Paid || filter.State == DuePending && status.Paid {
			continue
		}
		result = append(result, status)
	}
	return result, nil
}

func (r *fakeBillingRepo) ListOutstandingDues(ctx context.Context, memberID int64) ([]Due, error) {
	result := make([]Due, 0)
	for _, due := range r.sortedDues() {
		if due.MemberID == memberID && r.settlingPayment(due.ID) == nil {
			result = append(result, due)
		}
	}
	return result, nil
}

func (r *fakeBillingRepo) ListOverdueDues(ctx context.Context, memberID int64, before time.Time) ([]Due, error) {
	outstanding, _ := r.ListOutstandingDues(ctx, memberID)
	result := make([]Due, 0)
	for _, due := range outstanding {
		if due.DueDate.Before(before) {
			result = append(result, due)
		}
	}
	return result, nil
}

func (r *fakeBillingRepo) ListBillableProfiles(ctx context.Context, memberID *int64) ([]BillableProfile, error) {
	result := make([]BillableProfile, 0)
	for id, profile := range r.profiles {
		if memberID != nil && *memberID != id {
			continue
		}
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result, nil
}

func (r *fakeBillingRepo) ListExistingDueKeys(ctx context.Context, memberIDs []int64, periods []string) (map[DueKey]struct{}, error) {
	r.calls = append(r.calls, "existing")
	result := make(map[DueKey]struct{})
	for _, due := range r.dues {
		result[DueKey{MemberID: due.MemberID, Period: due.Period}] = struct{}{}
	}
	return result, nil
}

func (r *fakeBillingRepo) CreateDues(ctx context.Context, dues []Due) error {
	r.createDues++
	for i := range dues {
		r.nextDueID++
		dues[i].ID = r.nextDueID
		r.dues[dues[i].ID] = dues[i]
	}
	return nil
}

func (r *fakeBillingRepo) HasCompletedPayment(ctx context.Context, dueID int64) (bool, error) {
	return r.settlingPayment(dueID) != nil, nil
}

func (r *fakeBillingRepo) CreatePayments(ctx context.Context, payments []Payment) error {
	for i := range payments {
		if r.failPayment != nil && i > 0 {
			return r.failPayment
		}
		if payments[i].State == PaymentCompleted && r.settlingPayment(payments[i].DueID) != nil {
			return errors.New("duplicate completed payment")
		}
		r.nextPayID++
		payments[i].ID = r.nextPayID
		r.payments[payments[i].ID] = payments[i]
	}
	return nil
}

func (r *fakeBillingRepo) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &payment, nil
}

func (r *fakeBillingRepo) UpdatePayment(ctx context.Context, payment *Payment) error {
	if _, ok := r.payments[payment.ID]; !ok {
		return ErrPaymentNotFound
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *fakeBillingRepo) addDue(memberID int64, period string, amount float64, dueDate time.Time) Due {
	r.nextDueID++
	due := Due{ID: r.nextDueID, MemberID: memberID, Period: period, Amount: amount, DueDate: dueDate}
	r.dues[due.ID] = due
	return due
}

func (r *fakeBillingRepo) addPayment(dueID int64, state PaymentState) Payment {
	r.nextPayID++
	payment := Payment{ID: r.nextPayID, DueID: dueID, Amount: r.dues[dueID].Amount, Method: "cash", State: state}
	r.payments[payment.ID] = payment
	return payment
}

type fakeStandingCache struct {
	values  map[int64]bool
	deletes int
}

func newFakeStandingCache() *fakeStandingCache {
	return &fakeStandingCache{values: make(map[int64]bool)}
}

func (c *fakeStandingCache) Get(memberID int64) (bool, bool) {
	v, ok := c.values[memberID]
	return v, ok
}

func (c *fakeStandingCache) Set(memberID int64, upToDate bool, ttl time.Duration) {
	c.values[memberID] = upToDate
}

func (c *fakeStandingCache) Delete(memberID int64) {
	c.deletes++
	delete(c.values, memberID)
}
