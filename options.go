package wmata

// Functional options that configure the Client during construction.

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mycelian/wmata/internal/connection"
	"github.com/mycelian/wmata/internal/workpool"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// ExecutorConfig tunes the worker pool requests run on. Without
// WithExecutorConfig it is read from WMATA_POOL_* environment variables.
type ExecutorConfig = workpool.Config

// Parser turns a complete response body into a result.
type Parser = connection.Parser

// WithBaseURL points the client at another host, such as a mock server. The
// URL must be absolute http or https; a trailing slash is dropped.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("base url: %w", err)
		}
		if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("base url %q must be an absolute http or https URL", raw)
		}
		c.baseURL = strings.TrimRight(raw, "/")
		return nil
	}
}

// WithAPIVersion overrides the reported API version.
func WithAPIVersion(v string) Option {
	return func(c *Client) error {
		if v == "" {
			return fmt.Errorf("api version cannot be empty")
		}
		c.apiVersion = v
		return nil
	}
}

// WithHTTPTimeout sets the per-request timeout of the default transports.
// It has no effect when WithHTTPClient is used. The value must be greater
// than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithHTTPClient sends every request, regardless of scheme, through hc.
// hc is copied; its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithDebugLogging logs each request and response dump at debug level when
// enabled is true. Dumps include the api_key query parameter; do not enable
// it in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.debug = true
		}
		return nil
	}
}

// WithExecutorConfig replaces the worker configuration otherwise read from
// WMATA_SQ_* environment variables.
func WithExecutorConfig(cfg ExecutorConfig) Option {
	return func(c *Client) error {
		c.execCfg = &cfg
		return nil
	}
}

// WithParser replaces the JSON body parser.
func WithParser(p Parser) Option {
	return func(c *Client) error {
		if p == nil {
			return fmt.Errorf("parser cannot be nil")
		}
		c.parser = p
		return nil
	}
}
