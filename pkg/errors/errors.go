// Package errors provides structured error handling for the array
// engine. Errors carry a category so callers can distinguish malformed
// input data from protocol corruption or plain I/O failure without
// string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeInternal represents internal invariant failures.
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid constructor arguments.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents data-dependent failures, such as a null
	// value where a non-null one is required.
	ErrorTypeData ErrorType = "data"
	// ErrorTypeRange represents out-of-range slice bounds.
	ErrorTypeRange ErrorType = "range"
	// ErrorTypeProtocol represents malformed wire messages. A protocol
	// error leaves the channel that produced it unusable.
	ErrorTypeProtocol ErrorType = "protocol"
	// ErrorTypeIO represents transport read/write failures.
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeConfig represents configuration errors.
	ErrorTypeConfig ErrorType = "config"
)

// Error is a categorized error with an optional cause and details.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a category and message. It returns
// nil when err is nil so call sites can wrap unconditionally.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Cause: err}
}

// IsType checks whether err (or any error it wraps) carries the given
// category.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}
