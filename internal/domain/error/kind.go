// Package error defines domain-specific errors for the Savings Circle application.
package error

import (
	"errors"
	"strings"
)

// Kind classifies an error into the small taxonomy every entry point reports.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindFailedPrecondition
	KindPermissionDenied
	KindUnavailable
	KindUnauthenticated
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindFailedPrecondition:
		return "failed-precondition"
	case KindPermissionDenied:
		return "permission-denied"
	case KindUnavailable:
		return "unavailable"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// kindFromCode extracts the category digits of a code shaped like AREA-KKYYYY.
func kindFromCode(code string) Kind {
	idx := strings.IndexByte(code, '-')
	if idx < 0 || len(code) < idx+3 {
		return KindInternal
	}

	switch code[idx+1 : idx+3] {
	case "01":
		return KindNotFound
	case "02":
		return KindInvalidArgument
	case "03":
		return KindFailedPrecondition
	case "04":
		return KindPermissionDenied
	case "05":
		return KindUnavailable
	case "06":
		return KindUnauthenticated
	default:
		return KindInternal
	}
}

// Kinded is implemented by every coded domain error.
type Kinded interface {
	error
	Kind() Kind
	ErrorCode() string
}

// KindOf reports the kind of err. Errors that carry no code are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// CodeOf returns the code carried by err, or an empty string.
func CodeOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorCode()
	}
	return ""
}

// MessageOf returns the user-facing message for err. Uncoded errors get a generic message
// so internals never leak to callers.
func MessageOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		if m, ok := k.(interface{ PublicMessage() string }); ok {
			return m.PublicMessage()
		}
	}
	return "an internal error occurred"
}
