package membership

import (
	"time"

	"club-app-go/internal/domain/billing"
)

type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

const DefaultDeactivationReason = "non-payment"

type Profile struct {
	MemberID           int64  `gorm:"primaryKey;autoIncrement:false"`
	State              State  `gorm:"type:text;not null"`
	LevelID            *int64 `gorm:"column:level_id"`
	DisciplineID       *int64 `gorm:"column:discipline_id"`
	CategoryID         *int64 `gorm:"column:category_id;index"`
	DeactivatedAt      *time.Time
	DeactivationReason *string
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "membership_profiles"
}

func (p Profile) IsActive() bool {
	return p.State == StateActive
}

type Discipline struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (Discipline) TableName() string {
	return "disciplines"
}

type Category struct {
	ID           int64  `gorm:"primaryKey"`
	DisciplineID int64  `gorm:"not null;index"`
	Name         string `gorm:"not null"`
	MinAge       *int
	MaxAge       *int
	Sex          string `gorm:"not null;default:''"`
}

func (Category) TableName() string {
	return "categories"
}

type EnrollOutcome string

const (
	EnrollCreated     EnrollOutcome = "created"
	EnrollReactivated EnrollOutcome = "reactivated"
)

type EnrollResult struct {
	Outcome EnrollOutcome
	Profile Profile
}

type AdminActivateInput struct {
	PaymentMethod string
	ReceiptRef    string
}

type ActivationResult struct {
	Profile            Profile
	PaymentsRegistered int
	DebtCleared        float64
	SettledDues        []billing.Due
}

type SportProfileInput struct {
	DisciplineID int64
	CategoryID   int64
}

type MemberFilter struct {
	State      State
	CategoryID *int64
	Query      string
	Limit      int
	Offset     int
}

// MemberSummary is a membership profile joined with identity and catalog names.
type MemberSummary struct {
	MemberID       int64
	Email          string
	FirstName      string
	LastName       string
	DocumentNumber *string
	State          State
	Level          *int
	DisciplineID   *int64
	Discipline     *string
	CategoryID     *int64
	Category       *string
	DeactivatedAt  *time.Time
	DuesUpToDate   bool
}

// Event is a lifecycle notification emitted after a successful commit.
type Event struct {
	Type       string    `json:"type"`
	MemberID   int64     `json:"member_id"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Reason     string    `json:"reason,omitempty"`
	Payments   int       `json:"payments,omitempty"`
}

const (
	EventEnrolled    = "membership.enrolled"
	EventReactivated = "membership.reactivated"
	EventDeactivated = "membership.deactivated"
	EventActivated   = "membership.activated"
)
