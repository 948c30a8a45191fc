package wmata

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// urlRecorder answers every request with 200 "null" and remembers its URL.
type urlRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (rec *urlRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rec.mu.Lock()
	rec.urls = append(rec.urls, r.URL.String())
	rec.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader("null")),
		Request:    r,
	}, nil
}

func (rec *urlRecorder) last(t *testing.T) string {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.urls) == 0 {
		t.Fatal("no request recorded")
	}
	return rec.urls[len(rec.urls)-1]
}

func testExecutor() Option {
	return WithExecutorConfig(ExecutorConfig{Workers: 2, MaxPending: 16})
}

func newTestClient(t *testing.T, apiKey string, opts ...Option) *Client {
	t.Helper()
	c, err := New(apiKey, append([]Option{testExecutor()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// recordingClient returns a client whose requests never leave the process.
func recordingClient(t *testing.T, apiKey string, opts ...Option) (*Client, *urlRecorder) {
	t.Helper()
	rec := &urlRecorder{}
	opts = append(opts, WithHTTPClient(&http.Client{Transport: rec}))
	return newTestClient(t, apiKey, opts...), rec
}

// awaitURL runs call to completion and returns the URL it requested.
func awaitURL(t *testing.T, rec *urlRecorder, call func(context.Context, Callback) error) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Await(ctx, func(cb Callback) error { return call(ctx, cb) }); err != nil {
		t.Fatalf("call: %v", err)
	}
	return rec.last(t)
}
