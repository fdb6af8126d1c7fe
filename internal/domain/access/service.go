package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"club-app-go/internal/domain/identity"
	"club-app-go/internal/domain/membership"
	"club-app-go/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultLookahead = 7 * 24 * time.Hour
	defaultLogLimit  = 50
	maxLogLimit      = 200
)

var tracer = otel.Tracer("club-app/access")

var codeReplacer = strings.NewReplacer("'", "-", `"`, "-")

type Service struct {
	repo      Repository
	members   MemberFinder
	profiles  ProfileReader
	dues      DuesReader
	events    EventFinder
	log       logger.Logger
	lookahead time.Duration
	now       func() time.Time
}

func NewService(repo Repository, members MemberFinder, profiles ProfileReader, dues DuesReader, events EventFinder, log logger.Logger, lookahead time.Duration) *Service {
	if lookahead <= 0 {
		lookahead = defaultLookahead
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:      repo,
		members:   members,
		profiles:  profiles,
		dues:      dues,
		events:    events,
		log:       log,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// NormalizeCode undoes the quote-for-dash substitution some scanner keyboard
// layouts produce and trims whitespace.
func NormalizeCode(raw string) string {
	return strings.TrimSpace(codeReplacer.Replace(raw))
}

// Evaluate decides whether the scanned code grants entry. It never fails:
// any internal fault yields a denied decision. Every call appends exactly
// one access log.
func (s *Service) Evaluate(ctx context.Context, raw string) Decision {
	ctx, span := tracer.Start(ctx, "access.Evaluate")
	defer span.End()

	code := NormalizeCode(raw)
	log := s.log.WithContext(ctx)

	var decision Decision
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Critical("access: evaluation panicked", "panic", fmt.Sprint(r), "input", code)
				decision = failClosed(decision)
			}
		}()
		if err := s.evaluate(ctx, code, &decision); err != nil {
			log.InternalError("access: evaluation failed", err, "input", code)
			decision = failClosed(decision)
		}
	}()

	s.appendLog(ctx, log, code, decision)

	span.SetAttributes(
		attribute.String("access.outcome", string(decision.Outcome)),
		attribute.String("access.reason", decision.Reason),
	)
	return decision
}

// Throttled records a scan rejected before evaluation because its source
// exceeded the scan rate.
func (s *Service) Throttled(ctx context.Context, raw string) Decision {
	ctx, span := tracer.Start(ctx, "access.Throttled")
	defer span.End()

	code := NormalizeCode(raw)
	decision := denied(ReasonRateLimited)
	s.appendLog(ctx, s.log.WithContext(ctx), code, decision)
	return decision
}

func (s *Service) evaluate(ctx context.Context, code string, decision *Decision) error {
	if code == "" {
		*decision = denied(ReasonEmptyCode)
		return nil
	}

	member, err := s.resolve(ctx, code)
	if err != nil {
		return err
	}
	if member == nil {
		*decision = denied(ReasonNotFound)
		return nil
	}
	info := &MemberInfo{ID: member.ID, Name: member.DisplayName()}
	decision.Member = info

	profile, err := s.profiles.GetProfile(ctx, member.ID)
	if err != nil {
		if errors.Is(err, membership.ErrNotMember) {
			setDenied(decision, ReasonNotMember)
			return nil
		}
		return err
	}
	info.Category = profile.CategoryID
	if !profile.IsActive() {
		setDenied(decision, ReasonInactive)
		return nil
	}

	now := s.now()
	overdue, err := s.dues.Overdue(ctx, member.ID, now)
	if err != nil {
		return err
	}
	if len(overdue) > 0 {
		setDenied(decision, ReasonDebt)
		decision.UnpaidDues = len(overdue)
		decision.Message = fmt.Sprintf("%d unpaid dues", len(overdue))
		return nil
	}

	decision.Granted = true
	decision.Outcome = OutcomeGranted
	decision.Reason = ReasonOK
	decision.Message = s.advisory(ctx, profile.CategoryID, now)
	return nil
}

// resolve tries the scan token, then the document number, then the numeric
// id. It returns nil when nothing matches.
func (s *Service) resolve(ctx context.Context, code string) (*identity.Member, error) {
	if token, err := uuid.Parse(code); err == nil {
		member, err := s.members.GetMemberByScanToken(ctx, token.String())
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, identity.ErrMemberNotFound) {
			return nil, err
		}
	}

	if document := identity.NormalizeDocument(code); document != "" {
		member, err := s.members.GetMemberByDocument(ctx, document)
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, identity.ErrMemberNotFound) {
			return nil, err
		}
	}

	if id, err := strconv.ParseInt(code, 10, 64); err == nil && id > 0 {
		member, err := s.members.GetMemberByID(ctx, id)
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, identity.ErrMemberNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// advisory names the nearest upcoming event. Lookup failures only drop the
// message.
func (s *Service) advisory(ctx context.Context, categoryID *int64, now time.Time) string {
	from := truncateDay(now)
	event, err := s.events.NearestEvent(ctx, categoryID, from, from.Add(s.lookahead))
	if err != nil {
		s.log.WithContext(ctx).Warn("access: event lookup failed", "err", err)
		return ""
	}
	if event == nil {
		return ""
	}
	return fmt.Sprintf("Upcoming: %s on %s", event.Title, event.StartsAt.Format("2006-01-02 15:04"))
}

func (s *Service) appendLog(ctx context.Context, log logger.Logger, code string, decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Critical("access: append log panicked", "panic", fmt.Sprint(r))
		}
	}()

	entry := Log{
		Outcome:  decision.Outcome,
		Reason:   decision.Reason,
		RawInput: code,
	}
	if decision.Member != nil {
		id := decision.Member.ID
		entry.MemberID = &id
	}
	if err := s.repo.AppendLog(ctx, &entry); err != nil {
		log.InternalError("access: append log failed", err, "outcome", entry.Outcome, "reason", entry.Reason)
	}
}

func (s *Service) ListLogs(ctx context.Context, actor identity.Actor, filter LogFilter) ([]Log, int64, error) {
	if !actor.IsManager() {
		return nil, 0, ErrForbidden
	}
	switch filter.Outcome {
	case "", OutcomeGranted, OutcomeDenied:
	default:
		return nil, 0, fmt.Errorf("%w: outcome must be granted or denied", ErrInvalidInput)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListLogs(ctx, filter)
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func denied(reason string) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason}
}

func setDenied(decision *Decision, reason string) {
	decision.Granted = false
	decision.Outcome = OutcomeDenied
	decision.Reason = reason
}

func failClosed(decision Decision) Decision {
	return Decision{
		Outcome: OutcomeDenied,
		Reason:  ReasonInternalError,
		Member:  decision.Member,
	}
}
