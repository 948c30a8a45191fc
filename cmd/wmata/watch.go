package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/wmata"
)

func (a *app) newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		count    uint64
	)
	cmd := &cobra.Command{
		Use:   "watch [codes...]",
		Short: "Poll next-train predictions and print a board on every refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := a.newClient(out)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			return watchPredictions(cmd.Context(), c, out, splitCodes(args), interval, count, a.cfg.HTTPTimeout)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Refresh interval")
	cmd.Flags().Uint64Var(&count, "count", 0, "Stop after this many refreshes (0 polls until interrupted)")
	return cmd
}

// watchPredictions prints one board per tick. count bounds the number of
// boards; zero means until ctx is cancelled. A failed refresh is logged and
// the next tick tries again.
func watchPredictions(ctx context.Context, c *wmata.Client, out io.Writer, codes []string, interval time.Duration, count uint64, timeout time.Duration) error {
	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if count > 0 {
		// The first tick is not drawn from the backoff.
		b = backoff.WithMaxRetries(b, count-1)
	}
	ticker := backoff.NewTicker(backoff.WithContext(b, ctx))
	defer ticker.Stop()

	for range ticker.C {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := wmata.Await(callCtx, func(cb wmata.Callback) error {
			return c.RailStationPrediction(callCtx, codes, cb)
		})
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if wmata.IsConfiguration(err) || errors.Is(err, wmata.ErrClientClosed) {
				return err
			}
			log.Warn().Err(err).Msg("watch: refresh failed")
			continue
		}

		var resp wmata.PredictionResponse
		if err := wmata.Decode(result, &resp); err != nil {
			return err
		}
		printBoard(out, time.Now(), resp.Trains)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printBoard(out io.Writer, at time.Time, trains []wmata.Train) {
	fmt.Fprintf(out, "%s\n", at.Format(time.Kitchen))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tLINE\tCAR\tDESTINATION\tMIN")
	for _, t := range trains {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.LocationName, t.Line, t.Car, t.DestinationName, t.Min)
	}
	_ = tw.Flush()
}
