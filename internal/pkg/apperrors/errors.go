// Package apperrors defines the error kinds services return. Each kind maps
// onto one HTTP status in the error middleware.
package apperrors

import "errors"

// Kind sentinels
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
)

// User errors
var (
	ErrUserNotFound       = NewResourceNotFoundError("user not found")
	ErrEmailAlreadyExists = NewConflictError("user with this email already exists")
	ErrAccountDisabled    = NewForbiddenError("account is deactivated")
)

// Org directory errors
var (
	ErrFacultyNotFound         = NewResourceNotFoundError("faculty not found")
	ErrFacultyAlreadyExists    = NewConflictError("faculty with this name already exists")
	ErrDepartmentNotFound      = NewResourceNotFoundError("department not found")
	ErrDepartmentAlreadyExists = NewConflictError("department with this name already exists in the faculty")
)

var (
	ErrProjectNotFound           = NewResourceNotFoundError("project not found")
	ErrInvalidPasswordResetToken = NewValidationError("password reset token is invalid or has expired")
)

// CustomError is a kind sentinel with a user-facing message and optional details
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// NewCustomError wraps err with a user-facing message
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

func NewResourceNotFoundError(message string) *CustomError {
	return NewCustomError(ErrResourceNotFound, message)
}

func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

func NewForbiddenError(message string) *CustomError {
	return NewCustomError(ErrPermissionDenied, message)
}

func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message)
}

func NewUnauthenticatedError(message string) *CustomError {
	return NewCustomError(ErrUnauthenticated, message)
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error carrying context details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// Message extracts the user-facing message of err, falling back to fallback
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
