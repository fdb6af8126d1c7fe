package billing

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrDueNotFound          = errors.New("due not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrLevelNotFound        = errors.New("membership level not found")
	ErrMemberNotEligible    = errors.New("member is not an active member")
	ErrNothingToPay         = errors.New("no unpaid dues selected")
	ErrDueAlreadyPaid       = errors.New("due already paid")
	ErrPaymentNotRefundable = errors.New("only completed payments can be refunded")
	ErrPaymentMethodMissing = errors.New("payment method is required")
	ErrForbidden            = errors.New("forbidden")
)
