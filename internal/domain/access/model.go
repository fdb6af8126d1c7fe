package access

import "time"

type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

const (
	ReasonEmptyCode     = "empty code"
	ReasonNotFound      = "not found"
	ReasonNotMember     = "not a member"
	ReasonInactive      = "inactive"
	ReasonDebt          = "debt"
	ReasonOK            = "ok"
	ReasonInternalError = "internal error"
	ReasonRateLimited   = "rate limited"
)

// Log is one append-only access attempt.
type Log struct {
	ID        int64     `gorm:"primaryKey"`
	MemberID  *int64    `gorm:"column:member_id"`
	Outcome   Outcome   `gorm:"type:text;not null"`
	Reason    string    `gorm:"not null"`
	RawInput  string    `gorm:"column:raw_input;not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (Log) TableName() string {
	return "access_logs"
}

type MemberInfo struct {
	ID       int64
	Name     string
	Category *int64
}

type Decision struct {
	Granted    bool
	Outcome    Outcome
	Reason     string
	Member     *MemberInfo
	Message    string
	UnpaidDues int
}

type LogFilter struct {
	MemberID *int64
	Outcome  Outcome
	Limit    int
	Offset   int
}
