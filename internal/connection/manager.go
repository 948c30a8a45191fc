// Package connection owns the lifecycle of outbound requests: it issues one
// GET per call, accumulates the body, parses it and delivers exactly one
// outcome to the caller's callback.
package connection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	wmataerrors "github.com/mycelian/wmata/internal/errors"
	"github.com/mycelian/wmata/internal/job"
	"github.com/mycelian/wmata/internal/transport"
	"github.com/mycelian/wmata/internal/workpool"
)

// Executor runs connection jobs off the caller's goroutine. Submit must not
// block. Jobs that implement workpool.Finisher get Finish called after Run,
// outside any worker slot; that is where the callback runs.
type Executor interface {
	Submit(context.Context, workpool.Job) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithTransport registers t for URLs with the given scheme.
func WithTransport(scheme string, t transport.Transport) Option {
	return func(m *Manager) { m.transports[scheme] = t }
}

// WithParser replaces the JSON body parser.
func WithParser(p Parser) Option {
	return func(m *Manager) {
		if p != nil {
			m.parser = p
		}
	}
}

// Manager issues requests and tracks the ones still in flight.
type Manager struct {
	exec       Executor
	transports map[string]transport.Transport
	parser     Parser

	mu       sync.Mutex
	inflight map[string]*connection
	idle     []chan struct{} // closed when inflight drains
}

// NewManager builds a Manager that runs connections on exec. Without
// WithTransport options, http and https use the default net/http transports.
func NewManager(exec Executor, opts ...Option) *Manager {
	m := &Manager{
		exec:       exec,
		transports: make(map[string]transport.Transport),
		parser:     JSONParser{},
		inflight:   make(map[string]*connection),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.transports) == 0 {
		m.transports["http"] = transport.NewHTTP(&http.Client{Transport: transport.NewPlainRoundTripper()})
		m.transports["https"] = transport.NewHTTP(&http.Client{Transport: transport.NewTLSRoundTripper()})
	}
	return m
}

// IssueRequest starts a GET for rawURL and returns without waiting for it.
// cb is invoked exactly once when the request reaches a terminal outcome.
//
// A malformed URL, an unsupported scheme or a nil callback is a configuration
// error returned here; cb is not invoked. Executor rejections (closed,
// full) are also returned here, without blocking.
func (m *Manager) IssueRequest(ctx context.Context, rawURL string, cb Callback) error {
	if cb == nil {
		return wmataerrors.NewConfigurationError("nil callback", nil)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return wmataerrors.NewConfigurationError("invalid request URL", err)
	}
	t, ok := m.transports[u.Scheme]
	if !ok {
		return wmataerrors.NewConfigurationError(fmt.Sprintf("URL contains unsupported request protocol %q", u.Scheme), nil)
	}

	c := &connection{
		id:       uuid.NewString(),
		req:      transport.Request{Method: http.MethodGet, URL: u},
		parser:   m.parser,
		cb:       cb,
		started:  time.Now(),
		finished: m.finish,
	}
	m.register(c)

	submitCtx, j := job.Detached(ctx, func(runCtx context.Context) error {
		m.run(runCtx, c, t)
		return nil
	}, c.deliver)
	if err := m.exec.Submit(submitCtx, j); err != nil {
		m.unregister(c)
		return err
	}
	connectionsIssued.WithLabelValues(u.Scheme).Inc()
	return nil
}

// InFlight reports how many issued requests have not reached their callback
// yet.
func (m *Manager) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight)
}

// Wait blocks until every issued request has reached its callback, or ctx is
// done. A request leaves the in-flight set just before its callback runs, so
// Wait may be called from inside a callback.
func (m *Manager) Wait(ctx context.Context) error {
	m.mu.Lock()
	if len(m.inflight) == 0 {
		m.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	m.idle = append(m.idle, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run streams the request; the outcome is delivered later by c.deliver.
func (m *Manager) run(ctx context.Context, c *connection, t transport.Transport) {
	log.Debug().
		Str("connection_id", c.id).
		Str("url", transport.RedactURL(c.req.URL)).
		Msg("issuing request")

	t.Stream(ctx, c.req, c.handle)
}

func (m *Manager) register(c *connection) {
	m.mu.Lock()
	m.inflight[c.id] = c
	m.mu.Unlock()
	connectionsInFlight.Inc()
}

func (m *Manager) unregister(c *connection) {
	m.mu.Lock()
	_, ok := m.inflight[c.id]
	delete(m.inflight, c.id)
	if len(m.inflight) == 0 {
		for _, ch := range m.idle {
			close(ch)
		}
		m.idle = nil
	}
	m.mu.Unlock()
	if ok {
		connectionsInFlight.Dec()
	}
}

// finish runs just before the callback.
func (m *Manager) finish(c *connection, err error) {
	m.unregister(c)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFor(err)
	}
	elapsed := time.Since(c.started)
	connectionOutcomes.WithLabelValues(outcome).Inc()
	connectionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	ev := log.Debug().
		Str("connection_id", c.id).
		Str("url", transport.RedactURL(c.req.URL)).
		Str("outcome", outcome).
		Dur("elapsed", elapsed)
	if code := wmataerrors.StatusCode(err); code != 0 {
		ev = ev.Int("status_code", code)
	}
	ev.Err(err).Msg("request finished")
}
