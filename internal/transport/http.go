package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// DefaultChunkSize bounds a single EventData chunk.
const DefaultChunkSize = 32 * 1024

// HTTP streams requests through a net/http client.
type HTTP struct {
	Client    *http.Client
	ChunkSize int
}

// NewHTTP returns a transport using client, or http.DefaultClient when nil.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Client: client, ChunkSize: DefaultChunkSize}
}

// NewPlainRoundTripper returns the round tripper for http URLs. Keep-alives
// are disabled: every request opens and closes its own connection.
func NewPlainRoundTripper() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// NewTLSRoundTripper returns the round tripper for https URLs, HTTP/2
// capable when the server negotiates it.
func NewTLSRoundTripper() *http.Transport {
	t := NewPlainRoundTripper()
	t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	if _, err := http2.ConfigureTransports(t); err != nil {
		log.Warn().Err(err).Msg("http2 unavailable, falling back to HTTP/1.1")
	}
	return t
}

// Stream implements Transport.
func (h *HTTP) Stream(ctx context.Context, req Request, emit Emitter) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), nil)
	if err != nil {
		emit(Event{Kind: EventError, Err: err})
		return
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Close = true

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		emit(Event{Kind: EventError, Err: RedactError(err)})
		return
	}
	defer func() {
		_ = resp.Body.Close()
		emit(Event{Kind: EventClose})
	}()

	if !emit(Event{Kind: EventResponse, StatusCode: resp.StatusCode, Header: resp.Header}) {
		return
	}

	size := h.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if !emit(Event{Kind: EventData, Chunk: buf[:n]}) {
				return
			}
		}
		switch {
		case rerr == nil:
			continue
		case errors.Is(rerr, io.EOF):
			emit(Event{Kind: EventEnd})
			return
		case errors.Is(rerr, io.ErrUnexpectedEOF):
			// Peer closed mid-body; the deferred close reports it.
			return
		default:
			emit(Event{Kind: EventError, Err: rerr})
			return
		}
	}
}
