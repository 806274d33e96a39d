package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error kind returned to API callers.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeInvalidStatus         Code = "INVALID_STATUS"
	CodePlanNotFound          Code = "PLAN_NOT_FOUND"
	CodeInvalidInput          Code = "INVALID_INPUT"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeHasActiveSubscription Code = "HAS_ACTIVE_SUBSCRIPTION"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// Error is a business-rule violation carried as a value across the
// service boundary. Handlers map it to an HTTP status; anything that is
// not an *Error is treated as unexpected and reported as CodeInternal.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the error code, defaulting to CodeInternal for
// unexpected failures.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-visible message. Causes of unexpected
// failures stay hidden; only the stable message is exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "unexpected error"
}

// HTTPStatus maps an error code to its transport status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound, CodePlanNotFound:
		return http.StatusNotFound
	case CodeInvalidStatus, CodeInvalidInput, CodeHasActiveSubscription:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
