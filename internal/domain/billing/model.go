package billing

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentState string

const (
	PaymentInitiated PaymentState = "initiated"
	PaymentCompleted PaymentState = "completed"
	PaymentFailed    PaymentState = "failed"
	PaymentRefunded  PaymentState = "refunded"
)

type DueState string

const (
	DueAll     DueState = ""
	DuePending DueState = "pending"
	DuePaid    DueState = "paid"
)

type Level struct {
	ID          int64   `gorm:"primaryKey"`
	Level       int     `gorm:"uniqueIndex;not null"`
	Discount    float64 `gorm:"type:numeric(5,2);not null;default:0"`
	Description string  `gorm:"not null;default:''"`
}

func (Level) TableName() string {
	return "membership_levels"
}

type Due struct {
	ID              int64     `gorm:"primaryKey"`
	MemberID        int64     `gorm:"index:idx_dues_member_period;not null"`
	CategoryID      *int64    `gorm:"column:category_id"`
	Period          string    `gorm:"index:idx_dues_member_period;type:char(7);not null"`
	Amount          float64   `gorm:"type:numeric(10,2);not null"`
	DueDate         time.Time `gorm:"type:date;not null"`
	DiscountApplied float64   `gorm:"type:numeric(5,2);not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (Due) TableName() string {
	return "dues"
}

type Payment struct {
	ID                int64        `gorm:"primaryKey"`
	DueID             int64        `gorm:"index;not null"`
	Amount            float64      `gorm:"type:numeric(10,2);not null"`
	Currency          string       `gorm:"not null;default:'ARS'"`
	Method            string       `gorm:"not null"`
	ExternalReference *string      `gorm:"column:external_reference"`
	ReceiptRef        *string      `gorm:"column:receipt_ref"`
	State             PaymentState `gorm:"type:text;not null"`
	Detail            datatypes.JSON
	PaidAt            *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

// DueStatus is a due together with its settling payment, if any.
type DueStatus struct {
	Due
	Paid          bool
	PaidAt        *time.Time
	PaymentID     *int64
	PaymentMethod *string
}

type DueFilter struct {
	MemberID int64
	State    DueState
	Period   string
}

// BillableProfile is an active membership as seen by dues generation.
type BillableProfile struct {
	MemberID   int64
	CategoryID *int64
	Discount   float64
}

type DueKey struct {
	MemberID int64
	Period   string
}

type GenerationReport struct {
	Period  string
	Created int
	Skipped int
}

type BackfillInput struct {
	From     string
	To       string
	MemberID *int64
}

type BackfillReport struct {
	From    string
	To      string
	Months  int
	Created int
	Skipped int
}

type RegisterPaymentsInput struct {
	DueIDs     []int64
	Method     string
	ReceiptRef string
}

type ChargeRequest struct {
	PaymentID int64
	DueID     int64
	Amount    float64
	Currency  string
	Method    string
}

type ChargeResult struct {
	Approved  bool
	Reference string
	Detail    map[string]any
}

type Options struct {
	BaseAmount  float64
	DueDay      int
	Currency    string
	StandingTTL time.Duration
}
