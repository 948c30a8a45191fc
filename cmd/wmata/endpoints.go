package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mycelian/wmata"
)

// dateLayout accepts both 2010-12-08 and 2010-12-8.
const dateLayout = "2006-1-2"

type callFunc = func(context.Context, *wmata.Client, wmata.Callback) error

type geoFlags struct{ lat, lon, radius float64 }

func (g *geoFlags) bind(cmd *cobra.Command, radius float64) {
	cmd.Flags().Float64Var(&g.lat, "lat", 38.878586, "Latitude of the centre point")
	cmd.Flags().Float64Var(&g.lon, "lon", -76.989626, "Longitude of the centre point")
	cmd.Flags().Float64Var(&g.radius, "radius", radius, "Search radius in metres")
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must look like 2010-12-8: %w", err)
	}
	return d, nil
}

// splitCodes accepts codes as separate args or comma-joined.
func splitCodes(args []string) []string {
	var codes []string
	for _, arg := range args {
		for _, c := range strings.Split(arg, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
	}
	return codes
}

// endpointCmd wraps build, which turns parsed flags and args into a call.
func (a *app) endpointCmd(use, short string, build func(args []string) (callFunc, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := build(args)
			if err != nil {
				return err
			}
			return a.runCall(cmd, cmd.Name(), call)
		},
	}
}

func (a *app) endpointCmds() []*cobra.Command {
	return []*cobra.Command{
		a.newBusPositionsCmd(),
		a.newBusPredictionCmd(),
		a.newBusRouteDetailsCmd(),
		a.newBusRoutesCmd(),
		a.newBusRouteScheduleCmd(),
		a.newBusStopsCmd(),
		a.newBusStopScheduleCmd(),
		a.newElevatorIncidentsCmd(),
		a.newRailIncidentsCmd(),
		a.newRailLinesCmd(),
		a.newRailPathsCmd(),
		a.newRailStationEntrancesCmd(),
		a.newRailStationInfoCmd(),
		a.newRailStationPredictionCmd(),
		a.newRailStationsCmd(),
	}
}

// --------------------------------------------------------------------
// Bus
// --------------------------------------------------------------------

func (a *app) newBusPositionsCmd() *cobra.Command {
	var route string
	var variations bool
	var geo geoFlags
	cmd := a.endpointCmd("bus-positions", "Live positions of buses on a route near a point", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusPositions(ctx, route, variations, geo.lat, geo.lon, geo.radius, cb)
		}, nil
	})
	cmd.Flags().StringVar(&route, "route", "10A", "Bus route")
	cmd.Flags().BoolVar(&variations, "include-variations", true, "Include route variations")
	geo.bind(cmd, 50000)
	return cmd
}

func (a *app) newBusPredictionCmd() *cobra.Command {
	var stop string
	cmd := a.endpointCmd("bus-prediction", "Next-bus predictions at a stop", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusPrediction(ctx, stop, cb)
		}, nil
	})
	cmd.Flags().StringVar(&stop, "stop", "1001888", "Regional stop ID")
	return cmd
}

func (a *app) newBusRouteDetailsCmd() *cobra.Command {
	var route, date string
	cmd := a.endpointCmd("bus-route-details", "Shape and stops of a route on a date", func([]string) (callFunc, error) {
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRouteDetails(ctx, route, d, cb)
		}, nil
	})
	cmd.Flags().StringVar(&route, "route", "16L", "Bus route")
	cmd.Flags().StringVar(&date, "date", "", "Service date as YYYY-M-D (default today)")
	return cmd
}

func (a *app) newBusRoutesCmd() *cobra.Command {
	return a.endpointCmd("bus-routes", "List every bus route", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRoutes(ctx, cb)
		}, nil
	})
}

func (a *app) newBusRouteScheduleCmd() *cobra.Command {
	var route, date string
	var variations bool
	cmd := a.endpointCmd("bus-route-schedule", "Scheduled trips of a route on a date", func([]string) (callFunc, error) {
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusRouteSchedule(ctx, route, d, variations, cb)
		}, nil
	})
	cmd.Flags().StringVar(&route, "route", "16L", "Bus route")
	cmd.Flags().StringVar(&date, "date", "", "Service date as YYYY-M-D (default today)")
	cmd.Flags().BoolVar(&variations, "include-variations", true, "Include route variations")
	return cmd
}

func (a *app) newBusStopsCmd() *cobra.Command {
	var geo geoFlags
	cmd := a.endpointCmd("bus-stops", "Bus stops near a point", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusStops(ctx, geo.lat, geo.lon, geo.radius, cb)
		}, nil
	})
	geo.bind(cmd, 500)
	return cmd
}

func (a *app) newBusStopScheduleCmd() *cobra.Command {
	var stop, date string
	var variations bool
	cmd := a.endpointCmd("bus-stop-schedule", "Scheduled arrivals at a stop on a date", func([]string) (callFunc, error) {
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.BusStopSchedule(ctx, stop, d, variations, cb)
		}, nil
	})
	cmd.Flags().StringVar(&stop, "stop", "2000019", "Regional stop ID")
	cmd.Flags().StringVar(&date, "date", "", "Service date as YYYY-M-D (default today)")
	cmd.Flags().BoolVar(&variations, "include-variations", true, "Include route variations")
	return cmd
}

// --------------------------------------------------------------------
// Incidents
// --------------------------------------------------------------------

func (a *app) newElevatorIncidentsCmd() *cobra.Command {
	var station string
	cmd := a.endpointCmd("elevator-incidents", "Elevator and escalator outages", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.ElevatorIncidents(ctx, station, cb)
		}, nil
	})
	cmd.Flags().StringVar(&station, "station", "A01", "Station code (empty for all)")
	return cmd
}

func (a *app) newRailIncidentsCmd() *cobra.Command {
	return a.endpointCmd("rail-incidents", "Current rail delays and disruptions", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailIncidents(ctx, cb)
		}, nil
	})
}

// --------------------------------------------------------------------
// Rail
// --------------------------------------------------------------------

func (a *app) newRailLinesCmd() *cobra.Command {
	return a.endpointCmd("rail-lines", "List every rail line", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailLines(ctx, cb)
		}, nil
	})
}

func (a *app) newRailPathsCmd() *cobra.Command {
	var from, to string
	cmd := a.endpointCmd("rail-paths", "Stations between two stations on one line", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailPaths(ctx, from, to, cb)
		}, nil
	})
	cmd.Flags().StringVar(&from, "from", "A10", "Starting station code")
	cmd.Flags().StringVar(&to, "to", "A12", "Destination station code")
	return cmd
}

func (a *app) newRailStationEntrancesCmd() *cobra.Command {
	var geo geoFlags
	cmd := a.endpointCmd("rail-station-entrances", "Station entrances near a point", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationEntrances(ctx, geo.lat, geo.lon, geo.radius, cb)
		}, nil
	})
	geo.bind(cmd, 500)
	return cmd
}

func (a *app) newRailStationInfoCmd() *cobra.Command {
	var station string
	cmd := a.endpointCmd("rail-station-info", "Location and lines of one station", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationInfo(ctx, station, cb)
		}, nil
	})
	cmd.Flags().StringVar(&station, "station", "A10", "Station code")
	return cmd
}

func (a *app) newRailStationPredictionCmd() *cobra.Command {
	return a.endpointCmd("rail-station-prediction [codes...]", "Next-train predictions (all stations when no codes are given)", func(args []string) (callFunc, error) {
		codes := splitCodes(args)
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStationPrediction(ctx, codes, cb)
		}, nil
	})
}

func (a *app) newRailStationsCmd() *cobra.Command {
	var line string
	cmd := a.endpointCmd("rail-stations", "Stations on a rail line", func([]string) (callFunc, error) {
		return func(ctx context.Context, c *wmata.Client, cb wmata.Callback) error {
			return c.RailStations(ctx, line, cb)
		}, nil
	})
	cmd.Flags().StringVar(&line, "line", "RD", "Line code")
	return cmd
}
