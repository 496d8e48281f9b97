package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes carried in the machine-readable "code" field.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_FAILED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeServerError  = "SERVER_ERROR"
)

// Error is a structured failure signal thrown by handlers and
// middleware and converted to an HTTP response exactly once, at the
// router boundary. A 3xx Status marks a redirect: a control-flow
// shortcut, not a fault.
type Error struct {
	Status  int
	Code    string
	Message string
	Header  http.Header
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Wrap attaches a cause, surfaced in development responses only.
func (e *Error) Wrap(err error) *Error {
	e.cause = err
	return e
}

// WithHeader adds a response header preserved through the boundary.
func (e *Error) WithHeader(key, value string) *Error {
	if e.Header == nil {
		e.Header = http.Header{}
	}
	e.Header.Add(key, value)
	return e
}

// IsRedirect reports whether e is a redirect signal rather than a fault.
func (e *Error) IsRedirect() bool {
	return e.Status >= 300 && e.Status < 400
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

// Validation carries per-field messages alongside the 422 status.
func Validation(fields map[string]string) *Error {
	err := New(http.StatusUnprocessableEntity, CodeValidation, "validation failed")
	err.Fields = fields
	return err
}

// TooManyRequests sets Retry-After when retryAfter is positive.
func TooManyRequests(retryAfter time.Duration) *Error {
	err := New(http.StatusTooManyRequests, CodeRateLimited, "too many requests")
	if retryAfter > 0 {
		err.WithHeader("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
	}
	return err
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeServerError, "internal server error").Wrap(err)
}

// Redirect builds the 3xx control-flow signal. The boundary renders it
// as an empty body with a Location header; any headers already written
// to the response (session cookies included) are preserved.
func Redirect(status int, location string) *Error {
	err := &Error{Status: status, Message: http.StatusText(status)}
	return err.WithHeader("Location", location)
}

// From converts any error to a *Error, wrapping unknown errors as
// server faults.
func From(err error) *Error {
	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}
	return Internal(err)
}
