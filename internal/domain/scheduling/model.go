package scheduling

import "time"

type SessionState string

const (
	SessionScheduled SessionState = "scheduled"
	SessionCancelled SessionState = "cancelled"
	SessionDone      SessionState = "done"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

type EventKind string

const (
	EventTournament EventKind = "tournament"
	EventMatch      EventKind = "match"
	EventTrip       EventKind = "trip"
	EventOther      EventKind = "other"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventTournament, EventMatch, EventTrip, EventOther:
		return true
	default:
		return false
	}
}

// Schedule is a recurring weekly slot. DayOfWeek is 0 for Monday through 6
// for Sunday.
type Schedule struct {
	ID         int64  `gorm:"primaryKey"`
	CategoryID int64  `gorm:"not null;index"`
	DayOfWeek  int    `gorm:"not null"`
	StartTime  string `gorm:"type:char(5);not null"`
	EndTime    string `gorm:"type:char(5);not null"`
	Location   string `gorm:"not null;default:''"`
	Active     bool   `gorm:"not null;default:true"`
}

func (Schedule) TableName() string {
	return "training_schedules"
}

type Session struct {
	ID         int64        `gorm:"primaryKey"`
	ScheduleID *int64       `gorm:"column:schedule_id"`
	CategoryID int64        `gorm:"not null;uniqueIndex:uq_sessions_category_date"`
	Date       time.Time    `gorm:"type:date;not null;uniqueIndex:uq_sessions_category_date"`
	State      SessionState `gorm:"type:text;not null;default:'scheduled'"`
}

func (Session) TableName() string {
	return "training_sessions"
}

type Attendance struct {
	ID         int64            `gorm:"primaryKey"`
	SessionID  int64            `gorm:"not null;uniqueIndex:uq_attendance_session_member"`
	MemberID   int64            `gorm:"not null;uniqueIndex:uq_attendance_session_member"`
	Status     AttendanceStatus `gorm:"type:text;not null"`
	RecordedBy *int64           `gorm:"column:recorded_by"`
	Note       string           `gorm:"not null;default:''"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type Event struct {
	ID           int64     `gorm:"primaryKey"`
	Kind         EventKind `gorm:"type:text;not null"`
	Title        string    `gorm:"not null"`
	Description  string    `gorm:"not null;default:''"`
	StartsAt     time.Time `gorm:"not null;index"`
	EndsAt       *time.Time
	Location     string `gorm:"not null;default:''"`
	DisciplineID *int64 `gorm:"column:discipline_id"`
	CategoryID   *int64 `gorm:"column:category_id"`
	Published    bool   `gorm:"not null;default:true"`
}

func (Event) TableName() string {
	return "events"
}

// Participant is an active member assigned to a category.
type Participant struct {
	MemberID  int64
	FirstName string
	LastName  string
}

func (p Participant) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

type SheetEntry struct {
	MemberID int64
	Name     string
	Status   AttendanceStatus
	Note     string
	Recorded bool
}

type AttendanceSheet struct {
	Session Session
	Entries []SheetEntry
}

type AttendanceEntry struct {
	MemberID int64
	Status   AttendanceStatus
	Note     string
}

type CreateScheduleInput struct {
	CategoryID int64
	DayOfWeek  int
	StartTime  string
	EndTime    string
	Location   string
}

type CreateEventInput struct {
	Kind         EventKind
	Title        string
	Description  string
	StartsAt     time.Time
	EndsAt       *time.Time
	Location     string
	DisciplineID *int64
	CategoryID   *int64
}

type EventFilter struct {
	From       time.Time
	To         time.Time
	CategoryID *int64
	// IncludeGeneral adds events without a category. With a nil CategoryID
	// it restricts the result to those events; otherwise nil means any.
	IncludeGeneral bool
}
