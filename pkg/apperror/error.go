package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-readable error category returned to clients.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindAlreadyExists   Kind = "already_exists"
	KindValidation      Kind = "validation_error"
	KindConflict        Kind = "conflict"
	KindUpstream        Kind = "upstream"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindInvalidState:    http.StatusConflict,
	KindAlreadyExists:   http.StatusConflict,
	KindValidation:      http.StatusBadRequest,
	KindConflict:        http.StatusConflict,
	KindUpstream:        http.StatusBadGateway,
	KindRateLimited:     http.StatusTooManyRequests,
	KindInternal:        http.StatusInternalServerError,
}

type AppError struct {
	Kind    Kind   `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the HTTP status for the error kind.
func (e *AppError) Code() int {
	if code, ok := kindStatus[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// WithReason returns a copy carrying a finer machine-readable reason.
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	cp.Reason = reason
	return &cp
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Unauthenticated(message string) *AppError {
	return New(KindUnauthenticated, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

func InvalidState(message string) *AppError {
	return New(KindInvalidState, message, nil)
}

func AlreadyExists(message string) *AppError {
	return New(KindAlreadyExists, message, nil)
}

func Validation(message string) *AppError {
	return New(KindValidation, message, nil)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message, nil)
}

func Upstream(message string, err error) *AppError {
	return New(KindUpstream, message, err)
}

func Internal(err error) *AppError {
	return New(KindInternal, "Internal Server Error", err)
}

// KindOf reports the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
