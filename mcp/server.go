// Package mcp serves the WMATA endpoints as Model Context Protocol tools over
// stdio or streamable HTTP.
package mcp

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/wmata"
	"github.com/mycelian/wmata/mcp/internal/handlers"
)

// Transport selects how the server talks to its host.
type Transport string

const (
	TransportAuto  Transport = "auto"
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Options configures Run.
type Options struct {
	Name            string
	Version         string
	Transport       Transport
	Addr            string // listen address for TransportHTTP
	ShutdownTimeout time.Duration
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server with every WMATA tool registered.
func NewServer(name, version string, c *wmata.Client) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	for _, h := range []toolRegisterer{
		handlers.NewRailHandler(c),
		handlers.NewBusHandler(c),
		handlers.NewIncidentHandler(c),
	} {
		if err := h.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run serves until ctx is cancelled (HTTP) or stdin closes (stdio).
func Run(ctx context.Context, c *wmata.Client, opts Options) error {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Addr == "" {
		opts.Addr = ":11546"
	}

	s, err := NewServer(opts.Name, opts.Version, c)
	if err != nil {
		return err
	}

	if resolveTransport(opts.Transport) == TransportStdio {
		log.Info().Msg("starting WMATA MCP server (stdio transport)")
		return server.ServeStdio(s)
	}

	log.Info().Str("addr", opts.Addr).Msg("starting WMATA MCP server (streamable HTTP)")
	streamSrv := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           streamSrv,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // No deadline - required for SSE streaming
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during HTTP server shutdown")
	}
	if err := streamSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during MCP server shutdown")
	}
	return nil
}

// resolveTransport picks stdio when stdin is not a terminal (launched by a
// host process) unless a transport was forced.
func resolveTransport(t Transport) Transport {
	switch t {
	case TransportStdio, TransportHTTP:
		return t
	}
	if fileInfo, err := os.Stdin.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		return TransportStdio
	}
	return TransportHTTP
}
