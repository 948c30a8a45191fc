// Package errors provides the error taxonomy for the WMATA client.
// Every failure a request can produce carries exactly one Kind.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies where a failure originated.
type Kind int

const (
	// KindConfiguration is a programming-time mistake such as an unsupported
	// URL scheme. It is returned synchronously, never through a callback.
	KindConfiguration Kind = iota

	// KindHTTPStatus is a response whose status was not 200 OK.
	KindHTTPStatus

	// KindTransport is a failure below the HTTP layer (DNS, connect, reset).
	KindTransport

	// KindParse is a 200 response whose body was not valid JSON.
	KindParse
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration"
	case KindHTTPStatus:
		return "HTTPStatus"
	case KindTransport:
		return "Transport"
	case KindParse:
		return "Parse"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Error is the single error type surfaced by the connection layer.
type Error struct {
	Kind       Kind
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Message    string // mapped status message or short description
	Underlying error  // transport or parse cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("[%s] HTTP %d: %s", e.Kind, e.StatusCode, e.Message)
	case e.Underlying != nil && e.Message != "":
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Underlying)
	case e.Underlying != nil:
		return fmt.Sprintf("[%s] %v", e.Kind, e.Underlying)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewConfigurationError reports a malformed or unsupported request URL.
func NewConfigurationError(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Underlying: err}
}

// NewTransportError wraps a failure below the HTTP layer.
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "transport failure", Underlying: err}
}

// NewParseError wraps a body decoding failure.
func NewParseError(err error) *Error {
	return &Error{Kind: KindParse, Message: "malformed response body", Underlying: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
