// Package reperr holds the error kinds surfaced by daily rep allocation.
package reperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindProfileNotFound           Kind = "PROFILE_NOT_FOUND"
	KindWeeklyLimitReached        Kind = "WEEKLY_LIMIT_REACHED"
	KindNoFocusAreas              Kind = "NO_FOCUS_AREAS"
	KindNoEligibleReps            Kind = "NO_ELIGIBLE_REPS"
	KindInvalidGenerationResponse Kind = "INVALID_GENERATION_RESPONSE"
	KindGenerationTimeout         Kind = "GENERATION_TIMEOUT"
	KindGenerationRateLimited     Kind = "GENERATION_RATE_LIMITED"
	KindGenerationPaymentRequired Kind = "GENERATION_PAYMENT_REQUIRED"
	KindNotificationFailed        Kind = "NOTIFICATION_FAILED"
	KindAssignmentNotFound        Kind = "ASSIGNMENT_NOT_FOUND"
	KindInvalidInput              Kind = "INVALID_INPUT"
)

// Error is a classified failure. Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind           Kind
	Message        string
	RetryAfterDays int
	Err            error
}

var (
	ErrProfileNotFound           = &Error{Kind: KindProfileNotFound}
	ErrWeeklyLimitReached        = &Error{Kind: KindWeeklyLimitReached}
	ErrNoFocusAreas              = &Error{Kind: KindNoFocusAreas}
	ErrNoEligibleReps            = &Error{Kind: KindNoEligibleReps}
	ErrInvalidGenerationResponse = &Error{Kind: KindInvalidGenerationResponse}
	ErrGenerationTimeout         = &Error{Kind: KindGenerationTimeout}
	ErrGenerationRateLimited     = &Error{Kind: KindGenerationRateLimited}
	ErrGenerationPaymentRequired = &Error{Kind: KindGenerationPaymentRequired}
	ErrNotificationFailed        = &Error{Kind: KindNotificationFailed}
	ErrAssignmentNotFound        = &Error{Kind: KindAssignmentNotFound}
	ErrInvalidInput              = &Error{Kind: KindInvalidInput}
)

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func WeeklyLimit(retryAfterDays int) *Error {
	return &Error{
		Kind:           KindWeeklyLimitReached,
		Message:        fmt.Sprintf("weekly free rep already used, next one in %d day(s)", retryAfterDays),
		RetryAfterDays: retryAfterDays,
	}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the caller may retry the same request.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindInvalidGenerationResponse, KindGenerationTimeout, KindGenerationRateLimited:
		return true
	}
	return false
}
