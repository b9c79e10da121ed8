// Package apperrors defines the error taxonomy shared by the recipe services
// and the HTTP layer. Every failure that leaves a service is an *Error so the
// handlers can map it to a status code without inspecting messages.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation            Kind = "VALIDATION_ERROR"
	KindConfiguration         Kind = "CONFIGURATION_ERROR"
	KindUpstreamEmptyResponse Kind = "UPSTREAM_EMPTY_RESPONSE"
	KindUpstreamParse         Kind = "UPSTREAM_PARSE_ERROR"
	KindUpstream              Kind = "UPSTREAM_ERROR"
	KindUpstreamTimeout       Kind = "UPSTREAM_TIMEOUT"
	KindStorageConnection     Kind = "STORAGE_CONNECTION_ERROR"
	KindStorageOperation      Kind = "STORAGE_OPERATION_ERROR"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindForbidden             Kind = "FORBIDDEN"
	KindRateLimited           Kind = "RATE_LIMITED"
	KindInternal              Kind = "INTERNAL_ERROR"
)

// Error is an application error carrying a kind, a client-safe message and
// an optional cause
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so errors.Is(err, apperrors.ErrValidation) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// StatusCode returns the HTTP status for the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream, KindUpstreamEmptyResponse, KindUpstreamParse:
		return http.StatusBadGateway
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindStorageConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is comparisons
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrConfiguration         = &Error{Kind: KindConfiguration}
	ErrUpstreamEmptyResponse = &Error{Kind: KindUpstreamEmptyResponse}
	ErrUpstreamParse         = &Error{Kind: KindUpstreamParse}
	ErrUpstream              = &Error{Kind: KindUpstream}
	ErrUpstreamTimeout       = &Error{Kind: KindUpstreamTimeout}
	ErrStorageConnection     = &Error{Kind: KindStorageConnection}
	ErrStorageOperation      = &Error{Kind: KindStorageOperation}
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrRateLimited           = &Error{Kind: KindRateLimited}
)

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind with a cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Configuration(message string) *Error {
	return New(KindConfiguration, message)
}

func UpstreamEmptyResponse(message string) *Error {
	return New(KindUpstreamEmptyResponse, message)
}

func UpstreamParse(message string, cause error) *Error {
	return Wrap(KindUpstreamParse, message, cause)
}

func Upstream(message string, cause error) *Error {
	return Wrap(KindUpstream, message, cause)
}

func StorageConnection(message string, cause error) *Error {
	return Wrap(KindStorageConnection, message, cause)
}

func StorageOperation(message string, cause error) *Error {
	return Wrap(KindStorageOperation, message, cause)
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "access forbidden"
	}
	return New(KindForbidden, message)
}

func RateLimited(message string) *Error {
	return New(KindRateLimited, message)
}

// FromTransport converts an outbound call failure. Deadline expiry becomes
// KindUpstreamTimeout so the client sees 504 instead of a generic 502.
func FromTransport(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Wrap(KindUpstreamTimeout, "recipe generator did not respond in time", err)
	}
	return Upstream("failed to reach recipe generator", err)
}

// As extracts an *Error from err, wrapping unknown errors as internal errors
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(KindInternal, "an unexpected error occurred", err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	return As(err).Kind
}
