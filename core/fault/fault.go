// Package fault is the error taxonomy for business-rule failures.
// Services return *fault.Error values; the API layer maps each kind to
// an HTTP status with api.Fail. Anything that is not a *fault.Error is
// treated as Internal and its detail is logged, not returned.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Invalid
	NotFound
	Conflict
	InsufficientStock
)

type Error struct {
	Kind    Kind
	Message string

	// Set for InsufficientStock only.
	Available int
	Requested int
}

func (e *Error) Error() string {
	return e.Message
}

func Invalidf(format string, args ...interface{}) *Error {
	return &Error{Kind: Invalid, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...)}
}

// Insufficient reports a usage request that exceeds on-hand quantity.
func Insufficient(available, requested int) *Error {
	return &Error{
		Kind:      InsufficientStock,
		Message:   fmt.Sprintf("insufficient quantity: %d available, %d requested", available, requested),
		Available: available,
		Requested: requested,
	}
}

// KindOf returns the kind of err, or Internal for foreign errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// As unwraps err into *Error when possible.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}
