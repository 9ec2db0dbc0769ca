package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindBadRequest indicates malformed or invalid input.
	KindBadRequest Kind = "bad_request"
	// KindUnauthorized indicates a missing or invalid caller token.
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden indicates a resolved caller lacking rights on the target.
	KindForbidden Kind = "forbidden"
	// KindNotFound indicates an absent record.
	KindNotFound Kind = "not_found"
	// KindUnknownAction indicates an unregistered action name.
	KindUnknownAction Kind = "unknown_action"
	// KindStore indicates an opaque store-level failure.
	KindStore Kind = "store_error"
)

// Error wraps an error with a kind and a human-friendly message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so errors.Is
// works against the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrBadRequest    = &Error{Kind: KindBadRequest}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrUnknownAction = &Error{Kind: KindUnknownAction}
	ErrStore         = &Error{Kind: KindStore}
)

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Message: msg, Err: err} }

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// BadRequest creates a KindBadRequest error.
func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }

// Forbidden creates a KindForbidden error.
func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

// NotFound creates a KindNotFound error.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// UnknownAction creates a KindUnknownAction error for the named action.
func UnknownAction(name string) *Error {
	return New(KindUnknownAction, fmt.Sprintf("unknown action %q", name))
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the human-friendly part of err without the kind prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps a kind to the transport status used by the HTTP layer.
// Store failures travel in the response body and keep a 200 status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindUnknownAction:
		return http.StatusNotFound
	case KindStore, "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
