package identity

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMemberNotFound     = errors.New("member not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrDocumentTaken      = errors.New("document number already registered")
	ErrMemberConflict     = errors.New("member already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
)
