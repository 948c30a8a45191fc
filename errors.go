package wmata

import (
	"errors"
	"fmt"

	wmataerrors "github.com/mycelian/wmata/internal/errors"
	"github.com/mycelian/wmata/internal/workpool"
)

// ErrEmptyAPIKey is returned by New when no API key is given.
var ErrEmptyAPIKey = errors.New("wmata: api key cannot be empty")

// ErrClientClosed is returned by operations called after Close.
var ErrClientClosed = errors.New("wmata: client closed")

// ErrBackPressure is returned when the client already holds its limit of
// pending requests. Submission fails immediately rather than waiting.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// Error is the type of every failure delivered through a Callback and of
// configuration errors returned synchronously.
type Error = wmataerrors.Error

// ErrorKind classifies an Error.
type ErrorKind = wmataerrors.Kind

const (
	KindConfiguration = wmataerrors.KindConfiguration
	KindHTTPStatus    = wmataerrors.KindHTTPStatus
	KindTransport     = wmataerrors.KindTransport
	KindParse         = wmataerrors.KindParse
)

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// IsConfiguration reports a malformed or unsupported request URL.
func IsConfiguration(err error) bool { return wmataerrors.Is(err, KindConfiguration) }

// IsHTTPStatus reports a non-200 response.
func IsHTTPStatus(err error) bool { return wmataerrors.Is(err, KindHTTPStatus) }

// IsTransport reports a failure below the HTTP layer.
func IsTransport(err error) bool { return wmataerrors.Is(err, KindTransport) }

// IsParse reports a 200 response whose body was not valid JSON.
func IsParse(err error) bool { return wmataerrors.Is(err, KindParse) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int { return wmataerrors.StatusCode(err) }

// submitError maps executor rejections onto the client's sentinels.
func submitError(err error) error {
	switch {
	case errors.Is(err, workpool.ErrPoolFull):
		return fmt.Errorf("%w: %v", ErrBackPressure, err)
	case errors.Is(err, workpool.ErrPoolClosed):
		return ErrClientClosed
	default:
		return err
	}
}
