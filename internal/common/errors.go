package common

import (
	"errors"
	"net/http"
)

// Kind discriminates failures that callers are expected to handle.
type Kind string

const (
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindDuplicateUsername  Kind = "DUPLICATE_USERNAME"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindMissingField       Kind = "MISSING_FIELD"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindNotFound           Kind = "NOT_FOUND"
	KindInternal           Kind = "INTERNAL"
)

// Error is a kinded error. Two errors match with errors.Is when their kinds
// are equal, so the sentinels below can be compared against errors carrying
// a more specific message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an error of the given kind with a client-facing message.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError attaches a kind and message to an underlying cause.
func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

var (
	// Repository-level errors.
	ErrorNotFound = NewError(KindNotFound, "not found")

	// Service-level errors.
	ErrorInternal     = NewError(KindInternal, "internal error")
	ErrorUnauthorized = NewError(KindUnauthorized, "Authentication required")
	ErrorForbidden    = NewError(KindForbidden, "forbidden")

	// Credential errors. Login failures are deliberately uniform.
	ErrInvalidCredentials = NewError(KindInvalidCredentials, "Invalid email or password")
	ErrDuplicateUsername  = NewError(KindDuplicateUsername, "Username already exists")
	ErrDuplicateEmail     = NewError(KindDuplicateEmail, "Email already exists")
	ErrMissingField       = NewError(KindMissingField, "missing required field")

	// Token lifecycle errors.
	ErrInvalidToken = NewError(KindInvalidToken, "Invalid token")
	ErrTokenExpired = NewError(KindTokenExpired, "Token expired")

	ErrServiceUnavailable = NewError(KindServiceUnavailable, "Service unavailable")
)

// MissingField reports which input was absent.
func MissingField(msg string) *Error {
	return NewError(KindMissingField, msg)
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err. Untyped errors never
// leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ErrorInternal.Message
}

// HTTPStatus maps an error kind to the status code used by every HTTP
// transport in the project.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidCredentials, KindInvalidToken, KindTokenExpired, KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindDuplicateUsername, KindDuplicateEmail:
		return http.StatusConflict
	case KindMissingField:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
