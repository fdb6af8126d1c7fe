package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"club-app-go/internal/domain/billing"
	"club-app-go/internal/domain/identity"
	"club-app-go/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const baseLevel = 1

var tracer = otel.Tracer("club-app/membership")

type Service struct {
	repo   Repository
	ledger Billing
	events EventPublisher
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, ledger Billing, events EventPublisher, log logger.Logger) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:   repo,
		ledger: ledger,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// BecomeMember enrolls a registered person or reactivates a lapsed member.
// Reactivation is refused while any due is unsettled; it never creates dues.
func (s *Service) BecomeMember(ctx context.Context, actor identity.Actor, memberID int64) (*EnrollResult, error) {
	ctx, span := tracer.Start(ctx, "membership.BecomeMember")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", memberID))

	if actor.ID != memberID && !actor.IsManager() {
		return nil, ErrForbidden
	}

	var result EnrollResult
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		people := tx.Identity()
		if _, err := people.GetMemberByID(ctx, memberID); err != nil {
			return err
		}
		if err := tx.Ledger().LockMember(ctx, memberID); err != nil {
			return err
		}

		roles, err := people.ListRoleNames(ctx, memberID)
		if err != nil {
			return err
		}
		profile, err := tx.GetProfile(ctx, memberID)
		if err != nil && !errors.Is(err, ErrNotMember) {
			return err
		}

		if profile == nil || !identity.HasAnyRole(roles, identity.RoleMember) {
			created, err := s.enroll(ctx, tx, memberID, profile)
			if err != nil {
				return err
			}
			result = EnrollResult{Outcome: EnrollCreated, Profile: *created}
			return nil
		}

		if profile.IsActive() {
			return ErrAlreadyActive
		}

		outstanding, err := tx.Ledger().ListOutstandingDues(ctx, memberID)
		if err != nil {
			return err
		}
		if len(outstanding) > 0 {
			billing.SortDues(outstanding)
			return &OutstandingDebtError{Total: billing.TotalAmount(outstanding), Dues: outstanding}
		}

		activate(profile)
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}
		result = EnrollResult{Outcome: EnrollReactivated, Profile: *profile}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := EventEnrolled
	if result.Outcome == EnrollReactivated {
		eventType = EventReactivated
	}
	s.publish(ctx, Event{Type: eventType, MemberID: memberID, ActorID: actor.ID})

	return &result, nil
}

// enroll creates the profile at the base level, or resets a leftover one,
// and grants the membership role.
func (s *Service) enroll(ctx context.Context, tx Repository, memberID int64, existing *Profile) (*Profile, error) {
	level, err := tx.Ledger().GetLevelByNumber(ctx, baseLevel)
	if err != nil {
		if errors.Is(err, billing.ErrLevelNotFound) {
			return nil, ErrLevelNotConfigured
		}
		return nil, err
	}
	role, err := tx.Identity().GetRoleByName(ctx, identity.RoleMember)
	if err != nil {
		if errors.Is(err, identity.ErrRoleNotFound) {
			return nil, ErrRoleNotConfigured
		}
		return nil, err
	}

	profile := existing
	if profile == nil {
		profile = &Profile{MemberID: memberID}
	}
	levelID := level.ID
	profile.LevelID = &levelID
	profile.DisciplineID = nil
	profile.CategoryID = nil
	activate(profile)

	if err := tx.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	if err := tx.Identity().AssignRole(ctx, memberID, role.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Deactivate(ctx context.Context, actor identity.Actor, memberID int64, reason string) (*Profile, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeactivationReason
	}

	var profile *Profile
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.Ledger().LockMember(ctx, memberID); err != nil {
			return err
		}
		var err error
		profile, err = tx.GetProfile(ctx, memberID)
		if err != nil {
			return err
		}
		if !profile.IsActive() {
			return ErrAlreadyInactive
		}
		now := s.now().UTC()
		profile.State = StateInactive
		profile.DeactivatedAt = &now
		profile.DeactivationReason = &reason
		return tx.SaveProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventDeactivated, MemberID: memberID, ActorID: actor.ID, Reason: reason})
	return profile, nil
}

// AdminActivate settles every outstanding due with the given method and
// reactivates the member, all in one transaction.
func (s *Service) AdminActivate(ctx context.Context, actor identity.Actor, memberID int64, input AdminActivateInput) (*ActivationResult, error) {
	ctx, span := tracer.Start(ctx, "membership.AdminActivate")
	defer span.End()
	span.SetAttributes(attribute.Int64("member.id", memberID))

	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		return nil, ErrPaymentMethodRequired
	}

	var result ActivationResult
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		ledger := tx.Ledger()
		if err := ledger.LockMember(ctx, memberID); err != nil {
			return err
		}
		profile, err := tx.GetProfile(ctx, memberID)
		if err != nil {
			return err
		}
		if profile.IsActive() {
			return ErrAlreadyActive
		}

		outstanding, err := ledger.ListOutstandingDues(ctx, memberID)
		if err != nil {
			return err
		}
		billing.SortDues(outstanding)
		payments, err := s.ledger.SettleWithin(ctx, ledger, outstanding, method, input.ReceiptRef)
		if err != nil {
			return err
		}

		activate(profile)
		if err := tx.SaveProfile(ctx, profile); err != nil {
			return err
		}

		result = ActivationResult{
			Profile:            *profile,
			PaymentsRegistered: len(payments),
			DebtCleared:        billing.TotalAmount(outstanding),
			SettledDues:        outstanding,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.InvalidateStanding(memberID)
	span.SetAttributes(attribute.Int("membership.payments", result.PaymentsRegistered))
	s.publish(ctx, Event{Type: EventActivated, MemberID: memberID, ActorID: actor.ID, Payments: result.PaymentsRegistered})
	return &result, nil
}

// UpdateSportProfile sets the caller's own discipline and category.
func (s *Service) UpdateSportProfile(ctx context.Context, actor identity.Actor, input SportProfileInput) (*Profile, error) {
	var profile *Profile
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		profile, err = tx.GetProfile(ctx, actor.ID)
		if err != nil {
			return err
		}
		discipline, err := tx.GetDiscipline(ctx, input.DisciplineID)
		if err != nil {
			return err
		}
		category, err := tx.GetCategory(ctx, input.CategoryID)
		if err != nil {
			return err
		}
		if category.DisciplineID != discipline.ID {
			return ErrCategoryMismatch
		}
		profile.DisciplineID = &discipline.ID
		profile.CategoryID = &category.ID
		return tx.SaveProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) GetProfile(ctx context.Context, memberID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, memberID)
}

func (s *Service) ListMembers(ctx context.Context, actor identity.Actor, filter MemberFilter) ([]MemberSummary, int64, error) {
	if !actor.IsManager() {
		return nil, 0, ErrForbidden
	}
	switch filter.State {
	case "", StateActive, StateInactive:
	default:
		return nil, 0, fmt.Errorf("%w: unknown state %q", ErrInvalidInput, filter.State)
	}

	members, total, err := s.repo.ListMembers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range members {
		upToDate, err := s.ledger.Standing(ctx, members[i].MemberID)
		if err != nil {
			return nil, 0, err
		}
		members[i].DuesUpToDate = upToDate
	}
	return members, total, nil
}

func (s *Service) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	return s.repo.ListDisciplines(ctx)
}

func (s *Service) ListCategories(ctx context.Context, disciplineID *int64) ([]Category, error) {
	return s.repo.ListCategories(ctx, disciplineID)
}

func (s *Service) publish(ctx context.Context, event Event) {
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithContext(ctx).Error("membership: publish event failed", "type", event.Type, "member_id", event.MemberID, "err", err)
	}
}

func activate(profile *Profile) {
	profile.State = StateActive
	profile.DeactivatedAt = nil
	profile.DeactivationReason = nil
}
