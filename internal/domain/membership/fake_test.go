package membership

import (
	"context"
	"errors"
	"sort"
	"time"

	"club-app-go/internal/domain/billing"
	"club-app-go/internal/domain/identity"
)

// fakeStore backs the membership, identity and billing repositories with
// maps. Transaction snapshots the state and restores it when fn fails.
type fakeStore struct {
	members     map[int64]identity.Member
	roles       map[string]identity.Role
	memberRoles map[int64]map[int64]struct{}
	profiles    map[int64]Profile
	levels      []billing.Level
	dues        map[int64]billing.Due
	payments    map[int64]billing.Payment
	disciplines map[int64]Discipline
	categories  map[int64]Category

	nextDueID     int64
	nextPaymentID int64
	// failPaymentsAfter makes CreatePayments fail after inserting that many rows.
	failPaymentsAfter int
	grants            int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[int64]identity.Member),
		roles: map[string]identity.Role{
			identity.RoleAdmin:  {ID: 1, Name: identity.RoleAdmin},
			identity.RoleLeader: {ID: 2, Name: identity.RoleLeader},
			identity.RoleCoach:  {ID: 3, Name: identity.RoleCoach},
			identity.RoleMember: {ID: 4, Name: identity.RoleMember},
		},
		memberRoles:       make(map[int64]map[int64]struct{}),
		profiles:          make(map[int64]Profile),
		levels:            []billing.Level{{ID: 10, Level: 1}, {ID: 11, Level: 2, Discount: 10}},
		dues:              make(map[int64]billing.Due),
		payments:          make(map[int64]billing.Payment),
		disciplines:       map[int64]Discipline{1: {ID: 1, Name: "Hockey"}, 2: {ID: 2, Name: "Rugby"}},
		categories:        map[int64]Category{5: {ID: 5, DisciplineID: 1, Name: "Sub-14"}, 6: {ID: 6, DisciplineID: 2, Name: "M19"}},
		failPaymentsAfter: -1,
	}
}

type fakeSnapshot struct {
	memberRoles map[int64]map[int64]struct{}
	profiles    map[int64]Profile
	dues        map[int64]billing.Due
	payments    map[int64]billing.Payment
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		memberRoles: make(map[int64]map[int64]struct{}),
		profiles:    make(map[int64]Profile),
		dues:        make(map[int64]billing.Due),
		payments:    make(map[int64]billing.Payment),
	}
	for k, v := range s.memberRoles {
		inner := make(map[int64]struct{}, len(v))
		for role := range v {
			inner[role] = struct{}{}
		}
		snap.memberRoles[k] = inner
	}
	for k, v := range s.profiles {
		snap.profiles[k] = v
	}
	for k, v := range s.dues {
		snap.dues[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.memberRoles = snap.memberRoles
	s.profiles = snap.profiles
	s.dues = snap.dues
	s.payments = snap.payments
}

func (s *fakeStore) Transaction(ctx context.Context, fn func(Repository) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) Identity() identity.Repository {
	return fakeIdentity{s}
}

func (s *fakeStore) Ledger() billing.Repository {
	return fakeLedger{s}
}

func (s *fakeStore) GetProfile(ctx context.Context, memberID int64) (*Profile, error) {
	profile, ok := s.profiles[memberID]
	if !ok {
		return nil, ErrNotMember
	}
	return &profile, nil
}

func (s *fakeStore) SaveProfile(ctx context.Context, profile *Profile) error {
	s.profiles[profile.MemberID] = *profile
	return nil
}

func (s *fakeStore) GetDiscipline(ctx context.Context, id int64) (*Discipline, error) {
	d, ok := s.disciplines[id]
	if !ok {
		return nil, ErrDisciplineNotFound
	}
	return &d, nil
}

func (s *fakeStore) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	result := make([]Discipline, 0, len(s.disciplines))
	for _, d := range s.disciplines {
		result = append(result, d)
	}
	return result, nil
}

func (s *fakeStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (s *fakeStore) ListCategories(ctx context.Context, disciplineID *int64) ([]Category, error) {
	result := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		if disciplineID == nil || c.DisciplineID == *disciplineID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *fakeStore) ListMembers(ctx context.Context, filter MemberFilter) ([]MemberSummary, int64, error) {
	ids := make([]int64, 0, len(s.profiles))
	for id, profile := range s.profiles {
		if filter.State != "" && profile.State != filter.State {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]MemberSummary, 0, len(ids))
	for _, id := range ids {
		member := s.members[id]
		profile := s.profiles[id]
		result = append(result, MemberSummary{
			MemberID:  id,
			Email:     member.Email,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			State:     profile.State,
		})
	}
	return result, int64(len(result)), nil
}

func (s *fakeStore) addMember(id int64, name string) {
	s.members[id] = identity.Member{ID: id, Email: name + "@club.org", FirstName: name, Active: true}
}

func (s *fakeStore) grant(memberID int64, role string) {
	if s.memberRoles[memberID] == nil {
		s.memberRoles[memberID] = make(map[int64]struct{})
	}
	s.memberRoles[memberID][s.roles[role].ID] = struct{}{}
}

func (s *fakeStore) addDue(memberID int64, period string, amount float64, dueDate time.Time) billing.Due {
	s.nextDueID++
	due := billing.Due{ID: s.nextDueID, MemberID: memberID, Period: period, Amount: amount, DueDate: dueDate}
	s.dues[due.ID] = due
	return due
}

func (s *fakeStore) addPayment(dueID int64, state billing.PaymentState) {
	s.nextPaymentID++
	s.payments[s.nextPaymentID] = billing.Payment{ID: s.nextPaymentID, DueID: dueID, Amount: s.dues[dueID].Amount, State: state, Method: "cash"}
}

func (s *fakeStore) settled(dueID int64) bool {
	for _, p := range s.payments {
		if p.DueID == dueID && p.State == billing.PaymentCompleted {
			return true
		}
	}
	return false
}

type fakeIdentity struct {
	s *fakeStore
}

func (f fakeIdentity) Transaction(ctx context.Context, fn func(identity.Repository) error) error {
	return fn(f)
}

func (f fakeIdentity) CreateMember(ctx context.Context, member *identity.Member) error {
	return errors.New("not implemented")
}

func (f fakeIdentity) GetMemberByID(ctx context.Context, id int64) (*identity.Member, error) {
	m, ok := f.s.members[id]
	if !ok {
		return nil, identity.ErrMemberNotFound
	}
	return &m, nil
}

func (f fakeIdentity) GetMemberByEmail(ctx context.Context, email string) (*identity.Member, error) {
	return nil, identity.ErrMemberNotFound
}

func (f fakeIdentity) GetMemberByDocument(ctx context.Context, document string) (*identity.Member, error) {
	return nil, identity.ErrMemberNotFound
}

func (f fakeIdentity) GetMemberByScanToken(ctx context.Context, token string) (*identity.Member, error) {
	return nil, identity.ErrMemberNotFound
}

func (f fakeIdentity) ListMembersByIDs(ctx context.Context, ids []int64) ([]identity.Member, error) {
	return nil, nil
}

func (f fakeIdentity) GetRoleByName(ctx context.Context, name string) (*identity.Role, error) {
	r, ok := f.s.roles[name]
	if !ok {
		return nil, identity.ErrRoleNotFound
	}
	return &r, nil
}

func (f fakeIdentity) ListRoleNames(ctx context.Context, memberID int64) ([]string, error) {
	names := make([]string, 0)
	for name, role := range f.s.roles {
		if _, ok := f.s.memberRoles[memberID][role.ID]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f fakeIdentity) AssignRole(ctx context.Context, memberID, roleID int64) error {
	if f.s.memberRoles[memberID] == nil {
		f.s.memberRoles[memberID] = make(map[int64]struct{})
	}
	if _, ok := f.s.memberRoles[memberID][roleID]; !ok {
		f.s.grants++
	}
	f.s.memberRoles[memberID][roleID] = struct{}{}
	return nil
}

func (f fakeIdentity) RevokeRole(ctx context.Context, memberID, roleID int64) (bool, error) {
	_, ok := f.s.memberRoles[memberID][roleID]
	delete(f.s.memberRoles[memberID], roleID)
	return ok, nil
}

type fakeLedger struct {
	s *fakeStore
}

func (f fakeLedger) Transaction(ctx context.Context, fn func(billing.Repository) error) error {
	snap := f.s.snapshot()
	if err := fn(f); err != nil {
		f.s.restore(snap)
		return err
	}
	return nil
}

func (f fakeLedger) LockMember(ctx context.Context, memberID int64) error {
	return nil
}

func (f fakeLedger) LockGeneration(ctx context.Context) error {
	return nil
}

func (f fakeLedger) GetLevelByNumber(ctx context.Context, level int) (*billing.Level, error) {
	for _, l := range f.s.levels {
		if l.Level == level {
			copied := l
			return &copied, nil
		}
	}
	return nil, billing.ErrLevelNotFound
}

func (f fakeLedger) ListLevels(ctx context.Context) ([]billing.Level, error) {
	return f.s.levels, nil
}

func (f fakeLedger) GetDue(ctx context.Context, id int64) (*billing.Due, error) {
	due, ok := f.s.dues[id]
	if !ok {
		return nil, billing.ErrDueNotFound
	}
	return &due, nil
}

func (f fakeLedger) ListDues(ctx context.Context, filter billing.DueFilter) ([]billing.DueStatus, error) {
	return nil, nil
}

func (f fakeLedger) ListOutstandingDues(ctx context.Context, memberID int64) ([]billing.Due, error) {
	result := make([]billing.Due, 0)
	for _, due := range f.s.dues {
		if due.MemberID == memberID && !f.s.settled(due.ID) {
			result = append(result, due)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f fakeLedger) ListOverdueDues(ctx context.Context, memberID int64, before time.Time) ([]billing.Due, error) {
	outstanding, _ := f.ListOutstandingDues(ctx, memberID)
	result := make([]billing.Due, 0)
	for _, due := range outstanding {
		if due.DueDate.Before(before) {
			result = append(result, due)
		}
	}
	return result, nil
}

func (f fakeLedger) ListBillableProfiles(ctx context.Context, memberID *int64) ([]billing.BillableProfile, error) {
	return nil, nil
}

func (f fakeLedger) ListExistingDueKeys(ctx context.Context, memberIDs []int64, periods []string) (map[billing.DueKey]struct{}, error) {
	return map[billing.DueKey]struct{}{}, nil
}

func (f fakeLedger) CreateDues(ctx context.Context, dues []billing.Due) error {
	return errors.New("not implemented")
}

func (f fakeLedger) HasCompletedPayment(ctx context.Context, dueID int64) (bool, error) {
	return f.s.settled(dueID), nil
}

func (f fakeLedger) CreatePayments(ctx context.Context, payments []billing.Payment) error {
	for i := range payments {
		if f.s.failPaymentsAfter >= 0 && i >= f.s.failPaymentsAfter {
			return errors.New("simulated failure")
		}
		if payments[i].State == billing.PaymentCompleted && f.s.settled(payments[i].DueID) {
			return errors.New("duplicate completed payment")
		}
		f.s.nextPaymentID++
		payments[i].ID = f.s.nextPaymentID
		f.s.payments[payments[i].ID] = payments[i]
	}
	return nil
}

func (f fakeLedger) GetPayment(ctx context.Context, id int64) (*billing.Payment, error) {
	p, ok := f.s.payments[id]
	if !ok {
		return nil, billing.ErrPaymentNotFound
	}
	return &p, nil
}

func (f fakeLedger) UpdatePayment(ctx context.Context, payment *billing.Payment) error {
	f.s.payments[payment.ID] = *payment
	return nil
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}
