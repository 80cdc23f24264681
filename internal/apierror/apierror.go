// Package apierror provides standardized error values and response envelopes.
// Services return *Error so the HTTP edge can tell "fix your input" from
// "try again" from "somebody else got there first" without parsing messages.
// Nothing internal (stack traces, SQL errors) ever reaches a client through
// this package.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal    Kind = iota
	KindValidation       // malformed input, rejected before any storage access
	KindNotFound         // unknown ornament / bill / client / merchant
	KindConflict         // already sold, duplicate key
	KindUnavailable      // storage timeout or outage; safe to retry at the edge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus is the response status used for errors of kind k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed domain error. Two errors are considered equal by errors.Is
// when their codes match, so package-level sentinels can be compared against
// errors carrying a more specific message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may safely retry the same request.
func (e *Error) Retryable() bool { return e.Kind == KindUnavailable }

// Wrap returns a copy of e with a specific message (and optional cause).
func (e *Error) Wrap(msg string, cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg, Err: cause}
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, msg string) *Error  { return &Error{Kind: KindValidation, Code: code, Message: msg} }
func NotFound(code, msg string) *Error    { return &Error{Kind: KindNotFound, Code: code, Message: msg} }
func Conflict(code, msg string) *Error    { return &Error{Kind: KindConflict, Code: code, Message: msg} }
func Unavailable(code, msg string) *Error { return &Error{Kind: KindUnavailable, Code: code, Message: msg} }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string `json:"detail"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the response envelope for a domain error.
func FromError(e *Error) *APIError {
	return &APIError{Detail: e.Message, Code: e.Code, Retryable: e.Retryable()}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Code: "VALIDATION_FAILED", Fields: fields}
}
