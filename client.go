// Package wmata is a client for the WMATA transit web service. Every
// operation issues one GET and reports its outcome through a Callback that
// fires exactly once.
package wmata

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mycelian/wmata/internal/connection"
	"github.com/mycelian/wmata/internal/transport"
	"github.com/mycelian/wmata/internal/workpool"
)

const (
	// DefaultBaseURL is the public WMATA API host.
	DefaultBaseURL = "http://api.wmata.com"
	// DefaultAPIVersion is reported by APIVersion unless overridden.
	DefaultAPIVersion = "1"
	// DefaultHTTPTimeout bounds a single request when no timeout is set.
	DefaultHTTPTimeout = 30 * time.Second

	userAgent = "wmata-go"
)

// Callback receives either a non-nil error and a nil result, or a nil error
// and the parsed JSON body.
type Callback = connection.Callback

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string

	timeout    time.Duration
	httpClient *http.Client // caller-supplied; used for every scheme when set
	debug      bool
	execCfg    *workpool.Config
	parser     connection.Parser

	exec  *workpool.Pool
	conns *connection.Manager

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for apiKey. The base URL and API version default to
// DefaultBaseURL and DefaultAPIVersion.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		timeout:    DefaultHTTPTimeout,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	cfg, err := c.executorConfig()
	if err != nil {
		return nil, err
	}
	c.exec = workpool.New(cfg)

	c.conns = connection.NewManager(c.exec,
		connection.WithParser(c.parser),
		connection.WithTransport("http", transport.NewHTTP(c.clientFor(transport.NewPlainRoundTripper()))),
		connection.WithTransport("https", transport.NewHTTP(c.clientFor(transport.NewTLSRoundTripper()))),
	)
	return c, nil
}

// APIKey returns the key appended to every request.
func (c *Client) APIKey() string { return c.apiKey }

// BaseURL returns the scheme and host requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// APIVersion returns the configured API version. The WMATA URL layout does
// not carry it.
func (c *Client) APIVersion() string { return c.apiVersion }

// InFlight reports how many issued requests have not delivered yet.
func (c *Client) InFlight() int { return c.conns.InFlight() }

// Wait blocks until every issued request has delivered its callback.
func (c *Client) Wait(ctx context.Context) error { return c.conns.Wait(ctx) }

// Close stops accepting requests and waits until every accepted request has
// finished its network phase. Callbacks may still be running when it
// returns. Safe to call multiple times, including from inside a callback.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.exec.Stop()
	return nil
}

func (c *Client) executorConfig() (workpool.Config, error) {
	if c.execCfg != nil {
		return *c.execCfg, nil
	}
	return workpool.LoadConfig()
}

// clientFor builds the http.Client used for one scheme. A caller-supplied
// client keeps its own transport and timeout.
func (c *Client) clientFor(rt http.RoundTripper) *http.Client {
	var hc http.Client
	if c.httpClient != nil {
		hc = *c.httpClient
		rt = hc.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
	} else {
		hc.Timeout = c.timeout
	}
	if c.debug {
		rt = &debugTransport{base: rt}
	}
	hc.Transport = &headerTransport{base: rt, userAgent: userAgent}
	return &hc
}

// headerTransport stamps client identification on every request.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	cloned.Header.Set("User-Agent", t.userAgent)
	if cloned.Header.Get("Accept") == "" {
		cloned.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(cloned)
}
