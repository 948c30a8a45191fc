package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wmataerrors "github.com/mycelian/wmata/internal/errors"
	"github.com/mycelian/wmata/internal/transport"
	"github.com/mycelian/wmata/internal/workpool"
)

// inlineExec runs jobs, finish step included, on the submitting goroutine.
type inlineExec struct{ submitted int32 }

func (e *inlineExec) Submit(ctx context.Context, j workpool.Job) error {
	atomic.AddInt32(&e.submitted, 1)
	err := j.Run(ctx)
	if f, ok := j.(workpool.Finisher); ok {
		f.Finish()
	}
	return err
}

type rejectingExec struct{ err error }

func (e rejectingExec) Submit(context.Context, workpool.Job) error { return e.err }

// scriptedTransport emits a fixed sequence of events, ignoring the emitter's
// request to stop so that late events reach the connection.
type scriptedTransport struct{ events []transport.Event }

func (s scriptedTransport) Stream(_ context.Context, _ transport.Request, emit transport.Emitter) {
	for _, ev := range s.events {
		emit(ev)
	}
}

type outcome struct {
	err    error
	result any
}

// collect returns a callback that records every invocation.
func collect() (Callback, func() []outcome) {
	var mu sync.Mutex
	var got []outcome
	cb := func(err error, result any) {
		mu.Lock()
		got = append(got, outcome{err: err, result: result})
		mu.Unlock()
	}
	return cb, func() []outcome {
		mu.Lock()
		defer mu.Unlock()
		return append([]outcome(nil), got...)
	}
}

func ok200() transport.Event { return transport.Event{Kind: transport.EventResponse, StatusCode: 200} }
func data(s string) transport.Event {
	return transport.Event{Kind: transport.EventData, Chunk: []byte(s)}
}

var (
	endEv   = transport.Event{Kind: transport.EventEnd}
	closeEv = transport.Event{Kind: transport.EventClose}
)

func TestIssueRequest_ExactlyOnceAcrossTerminationOrders(t *testing.T) {
	t.Parallel()
	cases := map[string][]transport.Event{
		"end only":        {ok200(), data(`{"Lines":`), data(`[]}`), endEv},
		"close only":      {ok200(), data(`{"Lines":[]}`), closeEv},
		"end then close":  {ok200(), data(`{"Lines":[]}`), endEv, closeEv},
		"close then end":  {ok200(), data(`{"Lines":[]}`), closeEv, endEv},
		"end close error": {ok200(), data(`{"Lines":[]}`), endEv, closeEv, {Kind: transport.EventError, Err: errors.New("reset")}},
		"data after end":  {ok200(), data(`{"Lines":[]}`), endEv, data(`garbage`), closeEv},
	}
	for name, events := range cases {
		events := events
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
			cb, got := collect()

			require.NoError(t, m.IssueRequest(context.Background(), "http://api.wmata.com/Rail.svc/json/JLines?api_key=K", cb))

			outcomes := got()
			require.Len(t, outcomes, 1)
			require.NoError(t, outcomes[0].err)
			assert.Equal(t, map[string]any{"Lines": []any{}}, outcomes[0].result)
			assert.Equal(t, 0, m.InFlight())
		})
	}
}

// First event wins: a premature close with a partial body is final even if a
// complete body would have followed.
func TestIssueRequest_FirstCompletionSignalWins(t *testing.T) {
	t.Parallel()
	events := []transport.Event{ok200(), data(`{"Lines":`), closeEv, data(`[]}`), endEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindParse))
	assert.Nil(t, outcomes[0].result)
}

func TestIssueRequest_NonOKStatus(t *testing.T) {
	t.Parallel()
	events := []transport.Event{
		{Kind: transport.EventResponse, StatusCode: 404},
		data(`{"Message":"nope"}`),
		endEv,
		closeEv,
	}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	var e *wmataerrors.Error
	require.ErrorAs(t, outcomes[0].err, &e)
	assert.Equal(t, wmataerrors.KindHTTPStatus, e.Kind)
	assert.Equal(t, 404, e.StatusCode)
	assert.Equal(t, "Not Found", e.Message)
	assert.Nil(t, outcomes[0].result)
}

func TestIssueRequest_UnmappedStatusGetsFallbackMessage(t *testing.T) {
	t.Parallel()
	events := []transport.Event{{Kind: transport.EventResponse, StatusCode: 599}, closeEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	var e *wmataerrors.Error
	require.ErrorAs(t, outcomes[0].err, &e)
	assert.Equal(t, 599, e.StatusCode)
	assert.Equal(t, wmataerrors.FallbackStatusMessage, e.Message)
}

func TestIssueRequest_TransportErrorBeforeResponse(t *testing.T) {
	t.Parallel()
	cause := errors.New("dial tcp: lookup api.wmata.com: no such host")
	events := []transport.Event{{Kind: transport.EventError, Err: cause}, closeEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindTransport))
	assert.ErrorIs(t, outcomes[0].err, cause)
	assert.Nil(t, outcomes[0].result)
}

func TestIssueRequest_TransportErrorMidBody(t *testing.T) {
	t.Parallel()
	events := []transport.Event{ok200(), data(`{"Li`), {Kind: transport.EventError, Err: errors.New("connection reset by peer")}, endEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindTransport))
}

func TestIssueRequest_CloseBeforeResponseIsTransportError(t *testing.T) {
	t.Parallel()
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: []transport.Event{closeEv}}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindTransport))
}

func TestIssueRequest_SilentTransportStillDelivers(t *testing.T) {
	t.Parallel()
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: []transport.Event{ok200(), data(`{}`)}}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindTransport))
}

func TestIssueRequest_ParseFailure(t *testing.T) {
	t.Parallel()
	events := []transport.Event{ok200(), data(`{"Lines":[{"LineCode":"RD"`), endEv, closeEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.True(t, wmataerrors.Is(outcomes[0].err, wmataerrors.KindParse))
	assert.Nil(t, outcomes[0].result)
}

func TestIssueRequest_NullBodyIsPresentResult(t *testing.T) {
	t.Parallel()
	events := []transport.Event{ok200(), data(`null`), endEv}
	m := NewManager(&inlineExec{}, WithTransport("http", scriptedTransport{events: events}))
	cb, got := collect()

	require.NoError(t, m.IssueRequest(context.Background(), "http://example.test/x", cb))

	outcomes := got()
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].err)
	assert.Nil(t, outcomes[0].result)
}

func TestIssueRequest_ConfigurationErrorsAreSynchronous(t *testing.T) {
	t.Parallel()
	exec := &inlineExec{}
	m := NewManager(exec)
	var calls int32
	cb := func(error, any) { atomic.AddInt32(&calls, 1) }

	for _, raw := range []string{"ftp://api.wmata.com/Rail.svc/json/JLines", "api.wmata.com/Rail.svc", "http://[::1"} {
		err := m.IssueRequest(context.Background(), raw, cb)
		require.Error(t, err, raw)
		assert.True(t, wmataerrors.Is(err, wmataerrors.KindConfiguration), raw)
	}
	err := m.IssueRequest(context.Background(), "http://api.wmata.com/", nil)
	assert.True(t, wmataerrors.Is(err, wmataerrors.KindConfiguration))

	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Zero(t, atomic.LoadInt32(&exec.submitted))
	assert.Equal(t, 0, m.InFlight())
}

func TestIssueRequest_ExecutorRejection(t *testing.T) {
	t.Parallel()
	m := NewManager(rejectingExec{err: workpool.ErrPoolClosed})
	var calls int32

	err := m.IssueRequest(context.Background(), "http://api.wmata.com/", func(error, any) { atomic.AddInt32(&calls, 1) })
	assert.ErrorIs(t, err, workpool.ErrPoolClosed)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, 0, m.InFlight())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, m.Wait(ctx))
}

func TestIssueRequest_ReturnsBeforeDelivery(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 2})
	defer exec.Stop()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))
	delivered := make(chan outcome, 1)
	require.NoError(t, m.IssueRequest(context.Background(), srv.URL, func(err error, result any) {
		delivered <- outcome{err: err, result: result}
	}))

	assert.Equal(t, 1, m.InFlight())
	close(release)

	select {
	case o := <-delivered:
		require.NoError(t, o.err)
		assert.Equal(t, []any{1.0, 2.0, 3.0}, o.result)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not delivered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))
	assert.Equal(t, 0, m.InFlight())
}

func TestIssueRequest_ConcurrentIndependence(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 4})
	defer exec.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"Message":"missing"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	defer srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))

	const n = 20
	var wg sync.WaitGroup
	results := make([]outcome, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		path := "/ok"
		if i%2 == 1 {
			path = "/missing"
		}
		require.NoError(t, m.IssueRequest(context.Background(), srv.URL+path, func(err error, result any) {
			results[i] = outcome{err: err, result: result}
			wg.Done()
		}))
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for callbacks")
	}

	for i, o := range results {
		if i%2 == 1 {
			assert.Equal(t, 404, wmataerrors.StatusCode(o.err), "request %d", i)
			assert.Nil(t, o.result, "request %d", i)
			continue
		}
		require.NoError(t, o.err, "request %d", i)
		assert.Equal(t, map[string]any{"path": "/ok"}, o.result, "request %d", i)
	}
}

func TestIssueRequest_CancelledContextDeliversTransportError(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 1})
	defer exec.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered := make(chan error, 1)
	require.NoError(t, m.IssueRequest(ctx, srv.URL, func(err error, result any) { delivered <- err }))

	select {
	case err := <-delivered:
		assert.True(t, wmataerrors.Is(err, wmataerrors.KindTransport))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request must still deliver")
	}
}

func TestWait_WhileIssuing(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 4})
	defer exec.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))
	var delivered int32
	cb := func(error, any) { atomic.AddInt32(&delivered, 1) }

	const issuers, perIssuer = 4, 25
	var wg sync.WaitGroup
	for i := 0; i < issuers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perIssuer; j++ {
				assert.NoError(t, m.IssueRequest(context.Background(), srv.URL, cb))
			}
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, m.Wait(ctx))
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))
	assert.Equal(t, int32(issuers*perIssuer), atomic.LoadInt32(&delivered))
	assert.Equal(t, 0, m.InFlight())
}

func TestWait_FromCallback(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 1})
	defer exec.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))
	waited := make(chan error, 1)
	require.NoError(t, m.IssueRequest(context.Background(), srv.URL, func(error, any) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		waited <- m.Wait(ctx)
	}))

	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Wait inside callback did not return")
	}
}

func TestWait_ContextExpires(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 1})
	defer exec.Stop()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(srv.Client())))
	require.NoError(t, m.IssueRequest(context.Background(), srv.URL, func(error, any) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)
}

func TestIssueRequest_TransportErrorHidesAPIKey(t *testing.T) {
	t.Parallel()
	exec := workpool.New(workpool.Config{Workers: 1})
	defer exec.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	m := NewManager(exec, WithTransport("http", transport.NewHTTP(&http.Client{Timeout: time.Second})))
	delivered := make(chan error, 1)
	require.NoError(t, m.IssueRequest(context.Background(), base+"/Rail.svc/json/JLines?api_key=SECRET", func(err error, _ any) {
		delivered <- err
	}))

	select {
	case err := <-delivered:
		require.Error(t, err)
		assert.True(t, wmataerrors.Is(err, wmataerrors.KindTransport))
		assert.NotContains(t, err.Error(), "SECRET")
	case <-time.After(3 * time.Second):
		t.Fatal("callback not delivered")
	}
}

func TestJSONParser(t *testing.T) {
	t.Parallel()
	v, err := JSONParser{}.Parse([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, v)

	_, err = JSONParser{}.Parse(nil)
	assert.Error(t, err)
}
