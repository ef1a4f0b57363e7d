package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for translation into an HTTP status.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindConfiguration
	KindUpstreamTimeout
	KindUpstreamUnavailable
	KindUpstreamFailure
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindConfiguration:
		return "configuration"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindPersistence:
		return "persistence"
	default:
		return "unclassified"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamTimeout:
		return http.StatusRequestTimeout
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is an already-classified failure. Code is a stable machine-readable
// identifier, Message is safe to show to callers and Details carries
// diagnostic text such as compiler stderr.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds a classified error around a cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// WithDetails returns a copy of e carrying diagnostic details.
func (e *Error) WithDetails(details string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnclassified when err carries none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnclassified
}

// Status returns the HTTP status for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// Classify returns err as a classified error, converting unknown failures
// into KindUnclassified with the error text attached.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return &Error{
		Kind:    KindUnclassified,
		Code:    "internal",
		Message: "An unexpected error occurred",
		Details: err.Error(),
		Err:     err,
	}
}

// FromTransport classifies a failed outbound call: deadline errors become
// KindUpstreamTimeout, everything else KindUpstreamUnavailable.
func FromTransport(err error, service string) *Error {
	if IsTimeout(err) {
		return Wrap(KindUpstreamTimeout, service+"_timeout", service+" request timed out", err)
	}
	return Wrap(KindUpstreamUnavailable, service+"_unavailable", service+" is unreachable", err)
}

// IsTimeout reports whether err represents an exceeded deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return true
	}
	return false
}
