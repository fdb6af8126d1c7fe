package scheduling

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
	CreateSchedule(ctx context.Context, schedule *Schedule) error
	GetSchedule(ctx context.Context, id int64) (*Schedule, error)
	ListSchedules(ctx context.Context, categoryID int64, activeOnly bool) ([]Schedule, error)
	SetScheduleActive(ctx context.Context, id int64, active bool) error
	ListSessionDates(ctx context.Context, categoryID int64, from, to time.Time) (map[string]struct{}, error)
	CreateSessions(ctx context.Context, sessions []Session) error
	GetSession(ctx context.Context, id int64) (*Session, error)
	ListSessions(ctx context.Context, categoryID int64, from, to time.Time) ([]Session, error)
	ListParticipants(ctx context.Context, categoryID int64) ([]Participant, error)
	ListAttendances(ctx context.Context, sessionID int64) ([]Attendance, error)
	UpsertAttendances(ctx context.Context, attendances []Attendance) error
	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}
