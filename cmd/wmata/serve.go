package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/wmata/internal/mockserver"
	"github.com/mycelian/wmata/mcp"
)

func (a *app) newMockCmd() *cobra.Command {
	var addr string
	var requireKey bool
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve canned WMATA responses for offline development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.MockAddr
			}
			var opts []mockserver.Option
			if requireKey {
				if err := a.cfg.RequireAPIKey(); err != nil {
					return err
				}
				opts = append(opts, mockserver.WithAPIKey(a.cfg.APIKey))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Debug().Bool("require_key", requireKey).Msg("mock: api key check")
			return mockserver.New(opts...).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $WMATA_MOCK_ADDR or :8089)")
	cmd.Flags().BoolVar(&requireKey, "require-key", false, "Reject requests whose api_key differs from the configured key")
	return cmd
}

func (a *app) newMCPCmd() *cobra.Command {
	var addr, transport string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the endpoints as Model Context Protocol tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mcp.Run(ctx, c, mcp.Options{
				Name:      a.cfg.MCPName,
				Version:   version,
				Transport: mcp.Transport(transport),
				Addr:      addr,
			})
		},
	}
	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportAuto), "auto, stdio or http")
	cmd.Flags().StringVar(&addr, "addr", ":11546", "Listen address for the http transport")
	return cmd
}
