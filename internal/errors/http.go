package errors

import "net/http"

// FallbackStatusMessage is used for status codes that have no entry in the
// service table and no standard text.
const FallbackStatusMessage = "Unexpected HTTP status"

// statusMessages documents the codes the service is known to return.
var statusMessages = map[int]string{
	http.StatusNotModified:         "Not Modified",
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusNotAcceptable:       "Not Acceptable",
	420:                            "Enhance Your Calm",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusBadGateway:          "Bad Gateway",
	http.StatusServiceUnavailable:  "Service Unavailable",
}

// StatusMessage maps a non-200 status code to its message. Codes outside the
// service table fall back to the standard status text, then to
// FallbackStatusMessage.
func StatusMessage(statusCode int) string {
	if msg, ok := statusMessages[statusCode]; ok {
		return msg
	}
	if msg := http.StatusText(statusCode); msg != "" {
		return msg
	}
	return FallbackStatusMessage
}

// NewHTTPError creates the error for a non-200 response.
func NewHTTPError(statusCode int) *Error {
	return &Error{
		Kind:       KindHTTPStatus,
		StatusCode: statusCode,
		Message:    StatusMessage(statusCode),
	}
}
