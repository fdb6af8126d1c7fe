package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"club-app-go/internal/domain/identity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

const (
	defaultBaseAmount  = 15000
	defaultDueDay      = 5
	defaultCurrency    = "ARS"
	defaultStandingTTL = time.Minute
	maxBackfillMonths  = 120
)

var tracer = otel.Tracer("club-app/billing")

type Service struct {
	repo    Repository
	gateway Gateway
	cache   StandingCache
	opts    Options
	now     func() time.Time
}

func NewService(repo Repository, gateway Gateway, cache StandingCache, opts Options) *Service {
	if cache == nil {
		cache = noopStandingCache{}
	}
	if opts.BaseAmount <= 0 {
		opts.BaseAmount = defaultBaseAmount
	}
	if opts.DueDay <= 0 {
		opts.DueDay = defaultDueDay
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	if opts.StandingTTL == 0 {
		opts.StandingTTL = defaultStandingTTL
	}
	return &Service{
		repo:    repo,
		gateway: gateway,
		cache:   cache,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Service) ListLevels(ctx context.Context) ([]Level, error) {
	return s.repo.ListLevels(ctx)
}

// Outstanding lists the member's dues that have no completed payment.
func (s *Service) Outstanding(ctx context.Context, memberID int64) ([]Due, error) {
	return s.repo.ListOutstandingDues(ctx, memberID)
}

// Overdue lists unsettled dues whose due date is before the given day.
func (s *Service) Overdue(ctx context.Context, memberID int64, today time.Time) ([]Due, error) {
	return s.repo.ListOverdueDues(ctx, memberID, truncateDay(today))
}

// Standing reports whether the member has no overdue unsettled dues. The
// answer may be stale for up to the configured TTL.
func (s *Service) Standing(ctx context.Context, memberID int64) (bool, error) {
	if upToDate, ok := s.cache.Get(memberID); ok {
		return upToDate, nil
	}
	overdue, err := s.Overdue(ctx, memberID, s.now())
	if err != nil {
		return false, err
	}
	upToDate := len(overdue) == 0
	s.cache.Set(memberID, upToDate, s.opts.StandingTTL)
	return upToDate, nil
}

func (s *Service) InvalidateStanding(memberID int64) {
	s.cache.Delete(memberID)
}

func (s *Service) GenerateMonthly(ctx context.Context, period string) (*GenerationReport, error) {
	ctx, span := tracer.Start(ctx, "billing.GenerateMonthly")
	defer span.End()

	start, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	period = FormatPeriod(start)
	span.SetAttributes(attribute.String("billing.period", period))

	report := GenerationReport{Period: period}
	var billed []int64
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		members, skipped, err := s.generate(ctx, tx, nil, []string{period})
		if err != nil {
			return err
		}
		billed = members
		report.Created = len(members)
		report.Skipped = skipped
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAll(billed)

	span.SetAttributes(attribute.Int("billing.created", report.Created))
	return &report, nil
}

func (s *Service) Backfill(ctx context.Context, input BackfillInput) (*BackfillReport, error) {
	ctx, span := tracer.Start(ctx, "billing.Backfill")
	defer span.End()

	from, err := ParsePeriod(input.From)
	if err != nil {
		return nil, err
	}
	to, err := ParsePeriod(input.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	periods := MonthsBetween(from, to)
	if len(periods) > maxBackfillMonths {
		return nil, fmt.Errorf("%w: range exceeds %d months", ErrInvalidInput, maxBackfillMonths)
	}

	report := BackfillReport{From: FormatPeriod(from), To: FormatPeriod(to), Months: len(periods)}
	var billed []int64
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		members, skipped, err := s.generate(ctx, tx, input.MemberID, periods)
		if err != nil {
			return err
		}
		billed = members
		report.Created = len(members)
		report.Skipped = skipped
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAll(billed)

	span.SetAttributes(attribute.Int("billing.created", report.Created), attribute.Int("billing.skipped", report.Skipped))
	return &report, nil
}

// generate inserts one due per active profile and period lacking one. It
// returns the member id of every due created, one entry per due, and the
// number of existing dues skipped. Generation runs are serialized so two
// concurrent runs cannot both miss the same (member, period).
func (s *Service) generate(ctx context.Context, tx Repository, memberID *int64, periods []string) ([]int64, int, error) {
	if err := tx.LockGeneration(ctx); err != nil {
		return nil, 0, err
	}
	profiles, err := tx.ListBillableProfiles(ctx, memberID)
	if err != nil {
		return nil, 0, err
	}
	if memberID != nil && len(profiles) == 0 {
		return nil, 0, ErrMemberNotEligible
	}
	if len(profiles) == 0 {
		return nil, 0, nil
	}

	memberIDs := make([]int64, 0, len(profiles))
	for _, profile := range profiles {
		memberIDs = append(memberIDs, profile.MemberID)
	}

	existing, err := tx.ListExistingDueKeys(ctx, memberIDs, periods)
	if err != nil {
		return nil, 0, err
	}

	dues := make([]Due, 0, len(profiles)*len(periods))
	skipped := 0
	for _, period := range periods {
		start, err := ParsePeriod(period)
		if err != nil {
			return nil, 0, err
		}
		dueDate := DueDateFor(start, s.opts.DueDay)
		for _, profile := range profiles {
			if _, ok := existing[DueKey{MemberID: profile.MemberID, Period: period}]; ok {
				skipped++
				continue
			}
			dues = append(dues, Due{
				MemberID:        profile.MemberID,
				CategoryID:      profile.CategoryID,
				Period:          period,
				Amount:          DueAmount(s.opts.BaseAmount, profile.Discount),
				DueDate:         dueDate,
				DiscountApplied: profile.Discount,
			})
		}
	}

	if len(dues) == 0 {
		return nil, skipped, nil
	}
	if err := tx.CreateDues(ctx, dues); err != nil {
		return nil, 0, fmt.Errorf("create dues: %w", err)
	}
	billed := make([]int64, 0, len(dues))
	for _, due := range dues {
		billed = append(billed, due.MemberID)
	}
	return billed, skipped, nil
}

// invalidateAll drops cached standing for members that were just billed.
func (s *Service) invalidateAll(memberIDs []int64) {
	for _, id := range memberIDs {
		s.cache.Delete(id)
	}
}

func (s *Service) ListDues(ctx context.Context, actor identity.Actor, filter DueFilter) ([]DueStatus, error) {
	if filter.MemberID != actor.ID && !actor.IsManager() {
		return nil, ErrForbidden
	}
	switch filter.State {
	case DueAll, DuePending, DuePaid:
	default:
		return nil, fmt.Errorf("%w: state must be pending or paid", ErrInvalidInput)
	}
	if filter.Period != "" {
		start, err := ParsePeriod(filter.Period)
		if err != nil {
			return nil, err
		}
		filter.Period = FormatPeriod(start)
	}
	return s.repo.ListDues(ctx, filter)
}

// RegisterPayments settles the selected unpaid dues of one member with
// completed payments in a single transaction.
func (s *Service) RegisterPayments(ctx context.Context, actor identity.Actor, memberID int64, input RegisterPaymentsInput) ([]Payment, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	method := strings.TrimSpace(input.Method)
	if method == "" {
		return nil, ErrPaymentMethodMissing
	}
	if len(input.DueIDs) == 0 {
		return nil, ErrNothingToPay
	}

	selected := make(map[int64]struct{}, len(input.DueIDs))
	for _, id := range input.DueIDs {
		selected[id] = struct{}{}
	}

	var payments []Payment
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockMember(ctx, memberID); err != nil {
			return err
		}
		outstanding, err := tx.ListOutstandingDues(ctx, memberID)
		if err != nil {
			return err
		}
		var dues []Due
		for _, due := range outstanding {
			if _, ok := selected[due.ID]; ok {
				dues = append(dues, due)
			}
		}
		if len(dues) == 0 {
			return ErrNothingToPay
		}
		payments, err = s.SettleWithin(ctx, tx, dues, method, input.ReceiptRef)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateStanding(memberID)
	return payments, nil
}

// SettleWithin records one completed payment per due using tx. Callers own
// the transaction and must invalidate standing after commit.
func (s *Service) SettleWithin(ctx context.Context, tx Repository, dues []Due, method, receiptRef string) ([]Payment, error) {
	if len(dues) == 0 {
		return []Payment{}, nil
	}
	paidAt := s.now().UTC()
	receiptRef = strings.TrimSpace(receiptRef)
	payments := make([]Payment, 0, len(dues))
	for _, due := range dues {
		payment := Payment{
			DueID:    due.ID,
			Amount:   due.Amount,
			Currency: s.opts.Currency,
			Method:   method,
			State:    PaymentCompleted,
			PaidAt:   &paidAt,
		}
		if receiptRef != "" {
			ref := receiptRef
			payment.ReceiptRef = &ref
		}
		payments = append(payments, payment)
	}
	if err := tx.CreatePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("create payments: %w", err)
	}
	return payments, nil
}

// Checkout charges one of the caller's own unpaid dues through the gateway.
// The payment is stored as initiated first and then moved to completed or
// failed depending on the gateway answer.
func (s *Service) Checkout(ctx context.Context, actor identity.Actor, dueID int64, method string) (*Payment, error) {
	ctx, span := tracer.Start(ctx, "billing.Checkout")
	defer span.End()

	method = strings.TrimSpace(method)
	if method == "" {
		return nil, ErrPaymentMethodMissing
	}

	var payment Payment
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		due, err := tx.GetDue(ctx, dueID)
		if err != nil {
			return err
		}
		if due.MemberID != actor.ID {
			return ErrForbidden
		}
		if err := tx.LockMember(ctx, due.MemberID); err != nil {
			return err
		}
		paid, err := tx.HasCompletedPayment(ctx, due.ID)
		if err != nil {
			return err
		}
		if paid {
			return ErrDueAlreadyPaid
		}
		payment = Payment{
			DueID:    due.ID,
			Amount:   due.Amount,
			Currency: s.opts.Currency,
			Method:   method,
			State:    PaymentInitiated,
		}
		payments := []Payment{payment}
		if err := tx.CreatePayments(ctx, payments); err != nil {
			return err
		}
		payment = payments[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, chargeErr := s.gateway.Charge(ctx, ChargeRequest{
		PaymentID: payment.ID,
		DueID:     payment.DueID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Method:    payment.Method,
	})

	detail := result.Detail
	if chargeErr != nil {
		detail = map[string]any{"error": chargeErr.Error()}
	}
	encoded, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("encode gateway detail: %w", err)
	}
	payment.Detail = datatypes.JSON(encoded)
	if result.Reference != "" {
		reference := result.Reference
		payment.ExternalReference = &reference
	}

	payment.State = PaymentFailed
	if chargeErr == nil && result.Approved {
		payment.State = PaymentCompleted
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if payment.State == PaymentCompleted {
			if err := tx.LockMember(ctx, actor.ID); err != nil {
				return err
			}
			paid, err := tx.HasCompletedPayment(ctx, payment.DueID)
			if err != nil {
				return err
			}
			if paid {
				payment.State = PaymentFailed
				payment.PaidAt = nil
			}
		}
		return tx.UpdatePayment(ctx, &payment)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("billing.payment_state", string(payment.State)))
	s.InvalidateStanding(actor.ID)
	return &payment, nil
}

// Refund moves a completed payment to refunded, which makes its due
// outstanding again.
func (s *Service) Refund(ctx context.Context, actor identity.Actor, paymentID int64) (*Payment, error) {
	if !actor.HasAnyRole(identity.RoleAdmin) {
		return nil, ErrForbidden
	}

	var (
		payment  *Payment
		memberID int64
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		payment, err = tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.State != PaymentCompleted {
			return ErrPaymentNotRefundable
		}
		due, err := tx.GetDue(ctx, payment.DueID)
		if err != nil {
			return err
		}
		memberID = due.MemberID
		payment.State = PaymentRefunded
		return tx.UpdatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateStanding(memberID)
	return payment, nil
}

// SortDues orders dues oldest period first.
func SortDues(dues []Due) {
	sort.SliceStable(dues, func(i, j int) bool {
		if dues[i].Period == dues[j].Period {
			return dues[i].ID < dues[j].ID
		}
		return dues[i].Period < dues[j].Period
	})
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
