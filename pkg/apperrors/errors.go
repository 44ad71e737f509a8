package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code       string `json:"code"`    // Machine-readable error code
	Message    string `json:"message"` // Human-readable message
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Original error, logged but never rendered
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches the cause to the error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// --- Error constructors ---

// NewBadRequest creates a 400 Bad Request error
func NewBadRequest(code, message string) *AppError {
	return newError(http.StatusBadRequest, code, message)
}

// NewUnauthorized creates a 401 Unauthorized error
func NewUnauthorized(code, message string) *AppError {
	return newError(http.StatusUnauthorized, code, message)
}

// NewForbidden creates a 403 Forbidden error
func NewForbidden(code, message string) *AppError {
	return newError(http.StatusForbidden, code, message)
}

// NewNotFound creates a 404 Not Found error
func NewNotFound(code, message string) *AppError {
	return newError(http.StatusNotFound, code, message)
}

// NewTooManyRequests creates a 429 Too Many Requests error
func NewTooManyRequests(code, message string) *AppError {
	return newError(http.StatusTooManyRequests, code, message)
}

// NewInternal creates a 500 Internal Server Error
func NewInternal(code, message string, err error) *AppError {
	return newError(http.StatusInternalServerError, code, message).Wrap(err)
}

// --- Domain shorthands ---

// Validation reports rejected input. message lists every violated constraint.
func Validation(message string) *AppError {
	return NewBadRequest(ErrCodeValidationFailed, message)
}

// NotFound reports a missing resource
func NotFound(message string) *AppError {
	return NewNotFound(ErrCodeNotFound, message)
}

// Forbidden reports an authenticated caller without the required role
func Forbidden() *AppError {
	return NewForbidden(ErrCodeForbidden, "You do not have permission to perform this action.")
}

// Unexpected hides err behind a generic message
func Unexpected(err error) *AppError {
	return NewInternal(ErrCodeUnexpectedError, "An unexpected error occurred", err)
}

// AsAppError attempts to convert an error to AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of an AppError anywhere in err's chain, or "" when there is none
func CodeOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}
