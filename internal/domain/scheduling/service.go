package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"club-app-go/internal/domain/identity"
)

const (
	maxRangeDays       = 366
	defaultUpcomingDay = 30
	maxUpcomingDays    = 365
	dateLayout         = "2006-01-02"
	clockLayout        = "15:04"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GenerateSessions creates one session per day in [start, end] whose weekday
// has an active schedule for the category. Days that already have a session
// are skipped, so repeated calls are idempotent.
func (s *Service) GenerateSessions(ctx context.Context, actor identity.Actor, categoryID int64, start, end time.Time) (int, error) {
	if !actor.IsManager() {
		return 0, ErrForbidden
	}
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end_date must not be before start_date", ErrInvalidInput)
	}
	if int(end.Sub(start).Hours()/24)+1 > maxRangeDays {
		return 0, ErrRangeTooLong
	}

	created := 0
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.CategoryExists(ctx, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}

		schedules, err := tx.ListSchedules(ctx, categoryID, true)
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			return nil
		}
		byWeekday := make(map[int]int64, len(schedules))
		for _, schedule := range schedules {
			if _, ok := byWeekday[schedule.DayOfWeek]; !ok {
				byWeekday[schedule.DayOfWeek] = schedule.ID
			}
		}

		existing, err := tx.ListSessionDates(ctx, categoryID, start, end)
		if err != nil {
			return err
		}

		var sessions []Session
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			scheduleID, ok := byWeekday[MondayIndex(day)]
			if !ok {
				continue
			}
			if _, ok := existing[day.Format(dateLayout)]; ok {
				continue
			}
			id := scheduleID
			sessions = append(sessions, Session{
				ScheduleID: &id,
				CategoryID: categoryID,
				Date:       day,
				State:      SessionScheduled,
			})
		}
		if len(sessions) == 0 {
			return nil
		}
		if err := tx.CreateSessions(ctx, sessions); err != nil {
			return fmt.Errorf("create sessions: %w", err)
		}
		created = len(sessions)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// AttendanceSheet lists every active member of the session's category once,
// absent unless a record says otherwise, ordered by display name.
func (s *Service) AttendanceSheet(ctx context.Context, sessionID int64) (*AttendanceSheet, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, session.CategoryID)
	if err != nil {
		return nil, err
	}
	attendances, err := s.repo.ListAttendances(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	recorded := make(map[int64]Attendance, len(attendances))
	for _, attendance := range attendances {
		recorded[attendance.MemberID] = attendance
	}

	entries := make([]SheetEntry, 0, len(participants))
	seen := make(map[int64]struct{}, len(participants))
	for _, participant := range participants {
		if _, ok := seen[participant.MemberID]; ok {
			continue
		}
		seen[participant.MemberID] = struct{}{}

		entry := SheetEntry{
			MemberID: participant.MemberID,
			Name:     participant.DisplayName(),
			Status:   StatusAbsent,
		}
		if attendance, ok := recorded[participant.MemberID]; ok {
			entry.Status = attendance.Status
			entry.Note = attendance.Note
			entry.Recorded = true
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a == b {
			return entries[i].MemberID < entries[j].MemberID
		}
		return a < b
	})

	return &AttendanceSheet{Session: *session, Entries: entries}, nil
}

// RecordAttendance upserts one record per member of the batch. A member
// listed twice keeps the last entry.
func (s *Service) RecordAttendance(ctx context.Context, actor identity.Actor, sessionID int64, entries []AttendanceEntry) (int, error) {
	if !actor.IsManager() {
		return 0, ErrForbidden
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: entries are required", ErrInvalidInput)
	}

	order := make([]int64, 0, len(entries))
	latest := make(map[int64]AttendanceEntry, len(entries))
	for _, entry := range entries {
		if !entry.Status.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, entry.Status)
		}
		if _, ok := latest[entry.MemberID]; !ok {
			order = append(order, entry.MemberID)
		}
		latest[entry.MemberID] = entry
	}

	recordedBy := actor.ID
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		session, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		participants, err := tx.ListParticipants(ctx, session.CategoryID)
		if err != nil {
			return err
		}
		allowed := make(map[int64]struct{}, len(participants))
		for _, participant := range participants {
			allowed[participant.MemberID] = struct{}{}
		}

		attendances := make([]Attendance, 0, len(order))
		for _, memberID := range order {
			if _, ok := allowed[memberID]; !ok {
				return fmt.Errorf("%w: member %d is not in the session category", ErrInvalidInput, memberID)
			}
			entry := latest[memberID]
			attendances = append(attendances, Attendance{
				SessionID:  sessionID,
				MemberID:   memberID,
				Status:     entry.Status,
				RecordedBy: &recordedBy,
				Note:       strings.TrimSpace(entry.Note),
			})
		}
		return tx.UpsertAttendances(ctx, attendances)
	})
	if err != nil {
		return 0, err
	}
	return len(order), nil
}

func (s *Service) CreateSchedule(ctx context.Context, actor identity.Actor, input CreateScheduleInput) (*Schedule, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week must be between 0 (Monday) and 6 (Sunday)", ErrInvalidInput)
	}
	startTime, err := time.Parse(clockLayout, strings.TrimSpace(input.StartTime))
	if err != nil {
		return nil, fmt.Errorf("%w: start_time must be HH:MM", ErrInvalidInput)
	}
	endTime, err := time.Parse(clockLayout, strings.TrimSpace(input.EndTime))
	if err != nil {
		return nil, fmt.Errorf("%w: end_time must be HH:MM", ErrInvalidInput)
	}
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidInput)
	}

	schedule := Schedule{
		CategoryID: input.CategoryID,
		DayOfWeek:  input.DayOfWeek,
		StartTime:  startTime.Format(clockLayout),
		EndTime:    endTime.Format(clockLayout),
		Location:   strings.TrimSpace(input.Location),
		Active:     true,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.CategoryExists(ctx, input.CategoryID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}
		return tx.CreateSchedule(ctx, &schedule)
	})
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *Service) ListSchedules(ctx context.Context, categoryID int64) ([]Schedule, error) {
	exists, err := s.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}
	return s.repo.ListSchedules(ctx, categoryID, false)
}

func (s *Service) SetScheduleActive(ctx context.Context, actor identity.Actor, id int64, active bool) (*Schedule, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	var schedule *Schedule
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		schedule, err = tx.GetSchedule(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.SetScheduleActive(ctx, id, active); err != nil {
			return err
		}
		schedule.Active = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *Service) ListSessions(ctx context.Context, categoryID int64, from, to time.Time) ([]Session, error) {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}
	return s.repo.ListSessions(ctx, categoryID, from, to)
}

func (s *Service) CreateEvent(ctx context.Context, actor identity.Actor, input CreateEventInput) (*Event, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be tournament, match, trip or other", ErrInvalidInput)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at is required", ErrInvalidInput)
	}
	if input.EndsAt != nil && input.EndsAt.Before(input.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must not be before starts_at", ErrInvalidInput)
	}

	event := Event{
		Kind:         input.Kind,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		StartsAt:     input.StartsAt.UTC(),
		EndsAt:       input.EndsAt,
		Location:     strings.TrimSpace(input.Location),
		DisciplineID: input.DisciplineID,
		CategoryID:   input.CategoryID,
		Published:    true,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if input.CategoryID != nil {
			exists, err := tx.CategoryExists(ctx, *input.CategoryID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrCategoryNotFound
			}
		}
		return tx.CreateEvent(ctx, &event)
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpcomingEvents lists published events starting within days from now. With
// a category it also includes general events.
func (s *Service) UpcomingEvents(ctx context.Context, days int, categoryID *int64) ([]Event, error) {
	if days == 0 {
		days = defaultUpcomingDay
	}
	if days < 0 || days > maxUpcomingDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxUpcomingDays)
	}
	from := s.now().UTC()
	return s.repo.ListEvents(ctx, EventFilter{
		From:           from,
		To:             from.AddDate(0, 0, days),
		CategoryID:     categoryID,
		IncludeGeneral: categoryID != nil,
	})
}

// NearestEvent returns the first published event in [from, until] for the
// category or for everyone, or nil when there is none.
func (s *Service) NearestEvent(ctx context.Context, categoryID *int64, from, until time.Time) (*Event, error) {
	events, err := s.repo.ListEvents(ctx, EventFilter{
		From:           from,
		To:             until,
		CategoryID:     categoryID,
		IncludeGeneral: true,
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	nearest := events[0]
	for _, event := range events[1:] {
		if event.StartsAt.Before(nearest.StartsAt) {
			nearest = event
		}
	}
	return &nearest, nil
}

// MondayIndex maps a date to 0 for Monday through 6 for Sunday.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, value)
	}
	return parsed, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
