// Package status defines the closed set of outcomes reported to callers of
// the client and the error type that carries them.
package status

import (
	"errors"
	"fmt"
	"net/http"
)

// Status is one member of the outcome taxonomy.
type Status string

const (
	Success              Status = "SUCCESS"
	ErrorPublishableKey  Status = "ERROR_PUBLISHABLE_KEY"
	ErrorPermissions     Status = "ERROR_PERMISSIONS"
	ErrorLocation        Status = "ERROR_LOCATION"
	ErrorNetwork         Status = "ERROR_NETWORK"
	ErrorBadRequest      Status = "ERROR_BAD_REQUEST"
	ErrorUnauthorized    Status = "ERROR_UNAUTHORIZED"
	ErrorPaymentRequired Status = "ERROR_PAYMENT_REQUIRED"
	ErrorForbidden       Status = "ERROR_FORBIDDEN"
	ErrorNotFound        Status = "ERROR_NOT_FOUND"
	ErrorRateLimit       Status = "ERROR_RATE_LIMIT"
	ErrorServer          Status = "ERROR_SERVER"
	ErrorUnknown         Status = "ERROR_UNKNOWN"
)

func (s Status) String() string {
	return string(s)
}

// FromHTTPStatus maps a response code to its outcome.
func FromHTTPStatus(code int) Status {
	switch {
	case code == http.StatusOK:
		return Success
	case code == http.StatusBadRequest:
		return ErrorBadRequest
	case code == http.StatusUnauthorized:
		return ErrorUnauthorized
	case code == http.StatusPaymentRequired:
		return ErrorPaymentRequired
	case code == http.StatusForbidden:
		return ErrorForbidden
	case code == http.StatusNotFound:
		return ErrorNotFound
	case code == http.StatusTooManyRequests:
		return ErrorRateLimit
	case code >= 500 && code < 600:
		return ErrorServer
	default:
		return ErrorUnknown
	}
}

// Error is the failure value returned by every client operation. Response
// holds the parsed body of an HTTP failure, Body the raw bytes when they
// could not be parsed.
type Error struct {
	Status   Status
	Response map[string]interface{}
	Body     []byte
	Err      error
}

// New returns a bare error of the given kind.
func New(s Status) *Error {
	return &Error{Status: s}
}

// Wrap returns an error of the given kind caused by err.
func Wrap(s Status, err error) *Error {
	return &Error{Status: s, Err: err}
}

// HTTP returns an error for a non-200 response.
func HTTP(s Status, response map[string]interface{}) *Error {
	return &Error{Status: s, Response: response}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Status, e.Err)
	}
	return string(e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == e.Status
}

// Of returns the kind of err: Success for nil, the carried kind for an
// *Error anywhere in the chain, ErrorUnknown for anything else.
func Of(err error) Status {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return ErrorUnknown
}

// ResponseOf returns the parsed response body attached to err, if any.
func ResponseOf(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Response
	}
	return nil
}

// Normalize folds any error into an *Error. Errors that are not already
// classified become ErrorUnknown and keep the original as cause.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(ErrorUnknown, err)
}
