// Package errors provides coded domain errors that the HTTP layer can
// translate into response statuses without inspecting error strings.
package errors

import (
	"errors"
	"net/http"
)

// Code classifies a domain failure. Codes map 1:1 onto HTTP statuses so the
// transport layer stays mechanical.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTooManyRequests    Code = "too_many_requests"
	CodeServiceUnavailable Code = "service_unavailable"
	CodeUpstream           Code = "upstream_error"
	CodeInternal           Code = "internal"
)

// Error carries a code, a client-safe message, and an optional wrapped cause.
// The cause is for logs only and never rendered to clients.
type Error struct {
	Code    Code
	Message string
	// Status overrides the code's default HTTP status. Used for CodeUpstream
	// where the peer's status is proxied through.
	Status int
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and client-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that records an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Upstream creates an error that proxies a peer service's status and message.
func Upstream(status int, message string) *Error {
	return &Error{Code: CodeUpstream, Message: message, Status: status}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error to its HTTP response status.
func ToHTTPStatus(err error) int {
	var de *Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	if de.Status != 0 {
		return de.Status
	}
	switch de.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
