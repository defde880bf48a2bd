package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrIncompleteAppointment
	ErrNotification
)

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

// IncompleteAppointment reports the required appointment fields that were never set.
func IncompleteAppointment(missing []string, err error) *AppError {
	return &AppError{
		Code:    ErrIncompleteAppointment,
		Message: fmt.Sprintf("incomplete appointment: missing %s", strings.Join(missing, ", ")),
		Err:     err,
	}
}

// Notification wraps a failure raised by a single appointment observer.
func Notification(observer string, err error) *AppError {
	return &AppError{
		Code:    ErrNotification,
		Message: fmt.Sprintf("observer %s failed", observer),
		Err:     err,
	}
}

// HasCode reports whether err, or any error combined into it, is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	for _, e := range multierr.Errors(err) {
		var appErr *AppError
		if stderrors.As(e, &appErr) && appErr.Code == code {
			return true
		}
	}
	return false
}
