package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidArgument represents an invalid argument error
	ErrorTypeInvalidArgument
	// ErrorTypeNotFound represents a missing asset or category error
	ErrorTypeNotFound
	// ErrorTypeUpstream represents a data-provider failure
	ErrorTypeUpstream
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
)

// AppError carries a type alongside the message and wrapped cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new untyped error.
func New(message string) error {
	return &AppError{Type: ErrorTypeUnknown, Message: message}
}

// Newf creates a new untyped error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeUnknown, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a message, preserving the original type
// when the cause is already an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	errType := ErrorTypeUnknown
	var appErr *AppError
	if errors.As(err, &appErr) {
		errType = appErr.Type
	}
	return &AppError{Type: errType, Message: message, Err: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsType reports whether err (or anything in its chain) is an AppError
// of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}

// InvalidArgument creates a new InvalidArgument error.
func InvalidArgument(message string) error {
	return &AppError{Type: ErrorTypeInvalidArgument, Message: message}
}

// InvalidArgumentf creates a new InvalidArgument error with a formatted message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a new NotFound error.
func NotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream creates a new Upstream error.
func Upstream(message string) error {
	return &AppError{Type: ErrorTypeUpstream, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) error {
	return &AppError{Type: ErrorTypeInternal, Message: message}
}
