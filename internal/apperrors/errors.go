package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Import pipeline failures. Each one maps to a distinct upload response.
var (
	// ErrNoFileProvided is returned when an import is started without a source file.
	ErrNoFileProvided = errors.New("no file provided")
	// ErrNoValidRows is returned when every row of an import was rejected.
	ErrNoValidRows = errors.New("no valid rows")
	// ErrStreamFailure is returned when the source stream cannot be read or parsed.
	ErrStreamFailure = errors.New("stream failure")
	// ErrPersistenceFailure is returned when the batch insert of an import fails.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// AppError carries an HTTP-ish status code and message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError builds a 400 AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewNotFoundError builds a 404 AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}
