// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the channel layer.

package api

import (
	"errors"
	"fmt"

	"github.com/rgooch/karma-sub004/translate"
)

var f = translate.From

// Common errors used across the library.
var (
	ErrChannelClosed     = errors.New(f("channel is closed"))
	ErrInvalidArgument   = errors.New(f("invalid argument"))
	ErrResourceExhausted = errors.New(f("resource exhausted"))
	ErrNotSupported      = errors.New(f("operation not supported"))
	ErrOutOfRange        = errors.New(f("position out of range"))
	ErrNotWriteable      = errors.New(f("channel is not writeable"))
	ErrNoMapping         = errors.New(f("memory mapping not possible"))

	// ErrPortExhausted is a resource exhaustion: every candidate port was busy.
	ErrPortExhausted = fmt.Errorf("%w: %s", ErrResourceExhausted, f("no free port within retry range"))
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotSupported
	ErrCodeOpen
	ErrCodeMap
	ErrCodeNetwork
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = f("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap attaches a cause to the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ContractViolation is the panic value raised when a caller breaks the
// channel contract: nil arguments, reuse after close, or an operation on a
// kind that does not support it. It is never returned as an error.
type ContractViolation struct {
	Op     string
	Kind   Kind
	Reason string
}

func (v *ContractViolation) Error() string {
	return f("%s on %s channel: %s", v.Op, v.Kind, v.Reason)
}

// Violation panics with a *ContractViolation.
func Violation(op string, kind Kind, reason string) {
	panic(&ContractViolation{Op: op, Kind: kind, Reason: reason})
}

// IsContractViolation reports whether a recovered panic value is a
// *ContractViolation.
func IsContractViolation(r any) bool {
	_, ok := r.(*ContractViolation)
	return ok
}
