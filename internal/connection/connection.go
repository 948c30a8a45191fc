package connection

import (
	"bytes"
	"errors"
	"net/http"
	"sync"
	"time"

	wmataerrors "github.com/mycelian/wmata/internal/errors"
	"github.com/mycelian/wmata/internal/transport"
)

// Callback receives the single outcome of a request: either a non-nil error
// and a nil result, or a nil error and the parsed result.
type Callback func(err error, result any)

var errClosedBeforeResponse = errors.New("connection closed before a response was received")

// errIncomplete covers a transport that returned without a terminal event.
var errIncomplete = errors.New("connection ended without a terminal event")

// connection is one in-flight request. Events for a connection come from a
// single goroutine and settle its outcome; deliver hands that outcome to the
// callback exactly once, after the transport has returned.
type connection struct {
	id      string
	req     transport.Request
	parser  Parser
	started time.Time

	buf       bytes.Buffer
	receiving bool
	terminal  bool
	err       error
	result    any

	once     sync.Once
	cb       Callback
	finished func(c *connection, err error)
}

// handle is the single completion handler for every lifecycle event. It
// reports whether more events are wanted.
func (c *connection) handle(ev transport.Event) bool {
	if c.terminal {
		return false
	}

	switch ev.Kind {
	case transport.EventError:
		c.settle(wmataerrors.NewTransportError(ev.Err), nil)

	case transport.EventResponse:
		c.buf.Reset()
		if ev.StatusCode != http.StatusOK {
			c.settle(wmataerrors.NewHTTPError(ev.StatusCode), nil)
			break
		}
		c.receiving = true

	case transport.EventData:
		if c.receiving {
			c.buf.Write(ev.Chunk)
		}

	case transport.EventClose, transport.EventEnd:
		// Whichever arrives first completes the body; the other is ignored.
		if !c.receiving {
			c.settle(wmataerrors.NewTransportError(errClosedBeforeResponse), nil)
			break
		}
		result, err := c.parser.Parse(c.buf.Bytes())
		if err != nil {
			c.settle(wmataerrors.NewParseError(err), nil)
			break
		}
		c.settle(nil, result)
	}

	return !c.terminal
}

func (c *connection) settle(err error, result any) {
	c.terminal = true
	c.err, c.result = err, result
	c.buf = bytes.Buffer{}
}

// deliver runs the callback once with the settled outcome. A transport that
// gave up without a terminal event settles as a transport error.
func (c *connection) deliver() {
	c.once.Do(func() {
		if !c.terminal {
			c.settle(wmataerrors.NewTransportError(errIncomplete), nil)
		}
		if c.finished != nil {
			c.finished(c, c.err)
		}
		if c.err != nil {
			c.cb(c.err, nil)
			return
		}
		c.cb(nil, c.result)
	})
}
