package scheduling

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
	ErrCategoryNotFound = errors.New("category not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidStatus    = errors.New("invalid attendance status")
	ErrRangeTooLong     = errors.New("date range exceeds 366 days")
)
