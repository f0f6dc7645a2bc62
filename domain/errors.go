package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error is a classified failure. Message is what clients see.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError classifies err while keeping it reachable through errors.Is/As.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Sentinels returned by repositories and use cases. Callers compare with
// errors.Is.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "User not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "Task not found")
	ErrSessionNotFound    = NewError(ErrCodeUnauthorized, "session not found")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmailTaken         = NewError(ErrCodeConflict, "email already registered")
)

// CodeOf returns the code of the outermost domain error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code != "" {
		return dErr.Code
	}
	return ErrCodeInternal
}

func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
