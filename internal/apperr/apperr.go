// Package apperr carries the engine's failure taxonomy on errors so that
// handlers can map a failure kind to an HTTP status without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound                   Kind = "not_found"
	KindAlreadyCompletedThisPeriod Kind = "already_completed_this_period"
	KindAlreadyCompleted           Kind = "already_completed"
	KindAlreadyOwned               Kind = "already_owned"
	KindNotAvailable               Kind = "not_available"
	KindAlreadyJoined              Kind = "already_joined"
	KindNotAMember                 Kind = "not_a_member"
	KindInsufficientPoints         Kind = "insufficient_points"
	KindInternal                   Kind = "internal"
)

type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// KindOf extracts the failure kind from an error chain; wrapped or unknown
// errors report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
