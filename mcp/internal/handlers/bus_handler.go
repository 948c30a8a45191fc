package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mycelian/wmata"
)

// BusHandler exposes Metrobus routes, stops, schedules and positions.
type BusHandler struct {
	client *wmata.Client
}

func NewBusHandler(c *wmata.Client) *BusHandler { return &BusHandler{client: c} }

func (bh *BusHandler) RegisterTools(s *server.MCPServer) error {
	routeID := mcp.WithString("route_id", mcp.Required(), mcp.Description("Bus route, e.g. 10A"))
	date := mcp.WithString("date", mcp.Description("Service date as YYYY-M-D; defaults to today"))
	variations := mcp.WithBoolean("include_variations", mcp.Description("Include route variations such as 10Av1"))

	routes := mcp.NewTool("bus_routes",
		mcp.WithDescription("List every Metrobus route"),
	)
	positions := mcp.NewTool("bus_positions",
		append([]mcp.ToolOption{
			mcp.WithDescription("Live positions of buses on a route near a point"),
			routeID,
			variations,
		}, pointOptions()...)...,
	)
	prediction := mcp.NewTool("bus_prediction",
		mcp.WithDescription("Next-bus arrival predictions at a stop"),
		mcp.WithString("stop_id", mcp.Required(), mcp.Description("Seven-digit regional stop ID")),
	)
	details := mcp.NewTool("bus_route_details",
		mcp.WithDescription("Shape and stops of a route on a date"),
		routeID,
		date,
	)
	schedule := mcp.NewTool("bus_route_schedule",
		mcp.WithDescription("Scheduled trips of a route on a date"),
		routeID,
		date,
		variations,
	)
	stops := mcp.NewTool("bus_stops",
		append([]mcp.ToolOption{mcp.WithDescription("Bus stops near a point")}, pointOptions()...)...,
	)
	stopSchedule := mcp.NewTool("bus_stop_schedule",
		mcp.WithDescription("Scheduled arrivals at a stop on a date"),
		mcp.WithString("stop_id", mcp.Required(), mcp.Description("Seven-digit regional stop ID")),
		date,
		variations,
	)

	s.AddTool(routes, bh.handleRoutes)
	s.AddTool(positions, bh.handlePositions)
	s.AddTool(prediction, bh.handlePrediction)
	s.AddTool(details, bh.handleRouteDetails)
	s.AddTool(schedule, bh.handleRouteSchedule)
	s.AddTool(stops, bh.handleStops)
	s.AddTool(stopSchedule, bh.handleStopSchedule)
	return nil
}

func (bh *BusHandler) handleRoutes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, "bus_routes", func(cb wmata.Callback) error {
		return bh.client.BusRoutes(ctx, cb)
	})
}

func (bh *BusHandler) handlePositions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	route, err := req.RequireString("route_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lat, lon, radius, err := point(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variations := boolArg(req, "include_variations")
	return run(ctx, "bus_positions", func(cb wmata.Callback) error {
		return bh.client.BusPositions(ctx, route, variations, lat, lon, radius, cb)
	})
}

func (bh *BusHandler) handlePrediction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stop, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "bus_prediction", func(cb wmata.Callback) error {
		return bh.client.BusPrediction(ctx, stop, cb)
	})
}

func (bh *BusHandler) handleRouteDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	route, err := req.RequireString("route_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := dateArg(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "bus_route_details", func(cb wmata.Callback) error {
		return bh.client.BusRouteDetails(ctx, route, date, cb)
	})
}

func (bh *BusHandler) handleRouteSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	route, err := req.RequireString("route_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := dateArg(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variations := boolArg(req, "include_variations")
	return run(ctx, "bus_route_schedule", func(cb wmata.Callback) error {
		return bh.client.BusRouteSchedule(ctx, route, date, variations, cb)
	})
}

func (bh *BusHandler) handleStops(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lon, radius, err := point(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "bus_stops", func(cb wmata.Callback) error {
		return bh.client.BusStops(ctx, lat, lon, radius, cb)
	})
}

func (bh *BusHandler) handleStopSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stop, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := dateArg(req, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variations := boolArg(req, "include_variations")
	return run(ctx, "bus_stop_schedule", func(cb wmata.Callback) error {
		return bh.client.BusStopSchedule(ctx, stop, date, variations, cb)
	})
}
