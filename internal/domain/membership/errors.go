package membership

import (
	"errors"
	"fmt"

	"club-app-go/internal/domain/billing"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrForbidden             = errors.New("forbidden")
	ErrNotMember             = errors.New("member has no membership profile")
	ErrAlreadyActive         = errors.New("membership already active")
	ErrAlreadyInactive       = errors.New("membership already inactive")
	ErrOutstandingDues       = errors.New("member has outstanding dues")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrLevelNotConfigured    = errors.New("membership level 1 is not configured")
	ErrRoleNotConfigured     = errors.New("membership role is not configured")
	ErrDisciplineNotFound    = errors.New("discipline not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryMismatch      = errors.New("category does not belong to discipline")
)

// OutstandingDebtError blocks a self-service reactivation. It carries the
// unsettled dues so callers can show what is owed.
type OutstandingDebtError struct {
	Total float64
	Dues  []billing.Due
}

func (e *OutstandingDebtError) Error() string {
	return fmt.Sprintf("member has %d outstanding dues totalling %.2f", len(e.Dues), e.Total)
}

func (e *OutstandingDebtError) Is(target error) bool {
	return target == ErrOutstandingDues
}
