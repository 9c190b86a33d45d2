package core

import "errors"

// Error classes. Every error returned to a caller wraps exactly one of these,
// and HTTP adapters map the class to a status.
var (
	ErrUnauthenticated = errors.New("not authorized")    // 401
	ErrForbidden       = errors.New("forbidden")         // 403
	ErrNotFound        = errors.New("not found")         // 404, also used for ownership failures
	ErrValidation      = errors.New("invalid input")     // 400
	ErrConflict        = errors.New("resource conflict") // 409
)

// Error is a classified error with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError returns an error that matches kind under errors.Is.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Authentication errors
var (
	ErrMissingAuthHeader  = NewError(ErrUnauthenticated, "not authorized, no token")
	ErrInvalidAuthHeader  = NewError(ErrUnauthenticated, "invalid authorization format, expected 'Bearer <token>'")
	ErrInvalidToken       = NewError(ErrUnauthenticated, "not authorized, token failed")
	ErrTokenExpired       = NewError(ErrUnauthenticated, "not authorized, token expired")
	ErrAccountGone        = NewError(ErrUnauthenticated, "not authorized, user not found")
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "invalid email or password")
)

// Resource errors
var (
	ErrAccountNotFound  = NewError(ErrNotFound, "user not found")
	ErrGoalNotFound     = NewError(ErrNotFound, "goal not found or user not authorized")
	ErrReminderNotFound = NewError(ErrNotFound, "reminder not found or user not authorized")
	ErrAccountExists    = NewError(ErrConflict, "user already exists")
)

// Validation errors (client input)
var (
	ErrInvalidRequestBody     = NewError(ErrValidation, "invalid request body")
	ErrUsernameRequired       = NewError(ErrValidation, "username is required")
	ErrEmailRequired          = NewError(ErrValidation, "email is required")
	ErrInvalidEmail           = NewError(ErrValidation, "invalid email format")
	ErrPasswordRequired       = NewError(ErrValidation, "password is required")
	ErrPasswordTooLong        = NewError(ErrValidation, "password is too long")
	ErrInvalidRole            = NewError(ErrValidation, "role must be 'patient' or 'healthcare_provider'")
	ErrGoalFieldsRequired     = NewError(ErrValidation, "please provide type, target, and unit for the goal")
	ErrInvalidTarget          = NewError(ErrValidation, "goal target must be a positive number")
	ErrProgressValueRequired  = NewError(ErrValidation, "progress value is required")
	ErrReminderFieldsRequired = NewError(ErrValidation, "please provide message, type, and due date for the reminder")
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required")
	ErrHTTPAdapterRequired = errors.New("http adapter is required")
	ErrSecretRequired      = errors.New("secret is required")
	ErrSecretTooShort      = errors.New("secret too short")
	ErrCacheNotFound       = errors.New("account not found in cache")
)
