package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/wmata"
	"github.com/mycelian/wmata/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// placeholderKey lets --dry-run print URLs without a configured key.
const placeholderKey = "API_KEY"

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app carries flag values and loaded configuration for one command run.
type app struct {
	configPath string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	debug      bool
	dryRun     bool

	cfg *config.Config
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "wmata",
		Short:         "Query the WMATA rail and bus web service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (overrides WMATA_* environment variables)")
	flags.StringVar(&a.apiKey, "api-key", "", "WMATA API key (default $WMATA_API_KEY)")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL (default $WMATA_BASE_URL or http://api.wmata.com)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (default $WMATA_HTTP_TIMEOUT or 30s)")
	flags.BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Print request URLs instead of sending them")

	for _, c := range a.endpointCmds() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(a.newSmokeCmd())
	rootCmd.AddCommand(a.newWatchCmd())
	rootCmd.AddCommand(a.newMockCmd())
	rootCmd.AddCommand(a.newMCPCmd())

	return rootCmd
}

// load resolves configuration: defaults, then env, then --config, then flags.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = a.apiKey
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("timeout") {
		cfg.HTTPTimeout = a.timeout
	}
	if a.debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	cfg.Init()
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug logging enabled")
	}
	a.cfg = cfg
	return nil
}

// newClient builds a client from the loaded configuration. With --dry-run
// nothing leaves the process: every request URL is written to out.
func (a *app) newClient(out io.Writer) (*wmata.Client, error) {
	key := a.cfg.APIKey
	if err := a.cfg.RequireAPIKey(); err != nil {
		if !a.dryRun {
			return nil, err
		}
		key = placeholderKey
	}

	opts := []wmata.Option{
		wmata.WithBaseURL(a.cfg.BaseURL),
		wmata.WithAPIVersion(a.cfg.APIVersion),
		wmata.WithHTTPTimeout(a.cfg.HTTPTimeout),
		wmata.WithDebugLogging(a.cfg.Debug),
	}
	if a.dryRun {
		opts = append(opts, wmata.WithHTTPClient(&http.Client{Transport: &dryRunTransport{out: out}}))
	}
	return wmata.New(key, opts...)
}

// dryRunTransport prints each request URL and answers 200 with a JSON null.
type dryRunTransport struct{ out io.Writer }

func (t *dryRunTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	fmt.Fprintln(t.out, req.URL.String())
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader("null")),
		Request:    req,
	}, nil
}

// runCall issues one endpoint call and prints its JSON result.
func (a *app) runCall(cmd *cobra.Command, name string, call func(context.Context, *wmata.Client, wmata.Callback) error) error {
	out := cmd.OutOrStdout()
	c, err := a.newClient(out)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTPTimeout+5*time.Second)
	defer cancel()

	log.Debug().Str("endpoint", name).Str("base_url", c.BaseURL()).Msg("calling endpoint")
	start := time.Now()
	result, err := wmata.Await(ctx, func(cb wmata.Callback) error {
		return call(ctx, c, cb)
	})
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("endpoint", name).Dur("elapsed", elapsed).Msg("call failed")
		return err
	}
	log.Debug().Str("endpoint", name).Dur("elapsed", elapsed).Msg("call completed")

	if a.dryRun {
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
