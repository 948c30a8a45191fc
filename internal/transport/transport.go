// Package transport turns one outbound GET into the ordered lifecycle events
// the connection layer consumes: error, response, data, close and end.
package transport

import (
	"context"
	"net/http"
	"net/url"
)

// EventKind enumerates the lifecycle events of a single request.
type EventKind int

const (
	// EventError is a failure below the HTTP layer at any point.
	EventError EventKind = iota
	// EventResponse carries the status line and headers.
	EventResponse
	// EventData carries one body chunk.
	EventData
	// EventClose reports the underlying stream was closed. It follows a
	// clean end and is also emitted alone when the body is cut short.
	EventClose
	// EventEnd reports the body was read to completion.
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventResponse:
		return "response"
	case EventData:
		return "data"
	case EventClose:
		return "close"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a single lifecycle notification. Chunk is only valid for the
// duration of the Emitter call.
type Event struct {
	Kind       EventKind
	StatusCode int
	Header     http.Header
	Chunk      []byte
	Err        error
}

// Emitter receives events in order. It returns false once the receiver is
// terminal, after which the transport stops reading and only releases
// resources.
type Emitter func(Event) bool

// Request is the immutable descriptor of one outbound call.
type Request struct {
	Method string
	URL    *url.URL
}

// Transport streams one request's lifecycle to emit. Stream returns once no
// further events will be emitted.
type Transport interface {
	Stream(ctx context.Context, req Request, emit Emitter)
}

// RedactURL returns u as a string with the api_key query value masked, for
// logging.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Get("api_key") == "" {
		return u.String()
	}
	redacted := *u
	q.Set("api_key", "REDACTED")
	redacted.RawQuery = q.Encode()
	return redacted.String()
}

// RedactError masks the api_key in the URL that net/http embeds in a
// *url.Error, as returned by http.Client.Do. Other errors are returned
// unchanged. The result still unwraps
// to the original cause.
func RedactError(err error) error {
	ue, ok := err.(*url.Error)
	if !ok {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return err
	}
	return &url.Error{Op: ue.Op, URL: RedactURL(u), Err: ue.Err}
}
