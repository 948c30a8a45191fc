package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/wmata"
)

// smokeBatchSize keeps the burst rate under the API's per-second quota.
const smokeBatchSize = 5

type smokeCall struct {
	name string
	call callFunc
}

// smokeCalls exercises every endpoint with known-good sample arguments.
func smokeCalls(today time.Time) []smokeCall {
	const lat, lon = 38.878586, -76.989626
	return []smokeCall{
		{"BusPositions", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusPositions(ctx, "10A", true, lat, lon, 50000, cb)
		}},
		{"BusPrediction", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusPrediction(ctx, "1001888", cb)
		}},
		{"BusRouteDetails", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRouteDetails(ctx, "16L", today, cb)
		}},
		{"BusRoutes", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRoutes(ctx, cb)
		}},
		{"BusRouteSchedule", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRouteSchedule(ctx, "16L", today, true, cb)
		}},
		{"BusStops", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusStops(ctx, lat, lon, 500, cb)
		}},
		{"BusStopSchedule", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusStopSchedule(ctx, "2000019", today, true, cb)
		}},
		{"ElevatorIncidents", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.ElevatorIncidents(ctx, "A01", cb)
		}},
		{"RailIncidents", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailIncidents(ctx, cb)
		}},
		{"RailLines", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailLines(ctx, cb)
		}},
		{"RailPaths", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailPaths(ctx, "A10", "A12", cb)
		}},
		{"RailStationEntrances", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationEntrances(ctx, lat, lon, 500, cb)
		}},
		{"RailStationInfo", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationInfo(ctx, "A10", cb)
		}},
		{"RailStationPrediction", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationPrediction(ctx, []string{"A10", "A11"}, cb)
		}},
		{"RailStations", func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStations(ctx, "RD", cb)
		}},
	}
}

type smokeResult struct {
	name    string
	err     error
	elapsed time.Duration
}

func (a *app) newSmokeCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Call every endpoint once and report which ones fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := a.newClient(out)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			results, err := runSmoke(cmd.Context(), c, smokeCalls(time.Now()), interval)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				status := "ok"
				if r.err != nil {
					status = "FAIL"
					failed++
				}
				fmt.Fprintf(out, "%-4s %-22s %8s", status, r.name, r.elapsed.Round(time.Millisecond))
				if r.err != nil {
					fmt.Fprintf(out, "  %v", r.err)
				}
				fmt.Fprintln(out)
			}
			if failed > 0 {
				return fmt.Errorf("smoke: %d of %d endpoints failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Pause between batches of requests")
	return cmd
}

// runSmoke issues calls in batches, one batch per tick, and waits for every
// callback. Results keep the order of calls.
func runSmoke(ctx context.Context, c *wmata.Client, calls []smokeCall, interval time.Duration) ([]smokeResult, error) {
	results := make([]smokeResult, len(calls))
	var wg sync.WaitGroup

	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(interval), ctx))
	defer ticker.Stop()

	next := 0
	for next < len(calls) {
		if _, ok := <-ticker.C; !ok {
			return nil, ctx.Err()
		}
		end := min(next+smokeBatchSize, len(calls))
		log.Debug().Int("from", next).Int("to", end).Msg("smoke: issuing batch")
		for i := next; i < end; i++ {
			results[i].name = calls[i].name
			start := time.Now()
			wg.Add(1)
			err := calls[i].call(ctx, c, func(err error, _ any) {
				results[i].err = err
				results[i].elapsed = time.Since(start)
				wg.Done()
			})
			if err != nil {
				results[i].err = err
				wg.Done()
			}
		}
		next = end
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
