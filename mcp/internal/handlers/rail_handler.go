package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mycelian/wmata"
)

// RailHandler exposes Metrorail lines, stations, paths and predictions.
type RailHandler struct {
	client *wmata.Client
}

func NewRailHandler(c *wmata.Client) *RailHandler { return &RailHandler{client: c} }

func (rh *RailHandler) RegisterTools(s *server.MCPServer) error {
	lines := mcp.NewTool("rail_lines",
		mcp.WithDescription("List every Metrorail line with its terminal station codes"),
	)
	stations := mcp.NewTool("rail_stations",
		mcp.WithDescription("List the stations on a rail line"),
		mcp.WithString("line_code", mcp.Required(), mcp.Description("Two-letter line code, e.g. RD, BL, OR")),
	)
	info := mcp.NewTool("rail_station_info",
		mcp.WithDescription("Location, address and lines of one station"),
		mcp.WithString("station_code", mcp.Required(), mcp.Description("Station code, e.g. A01")),
	)
	paths := mcp.NewTool("rail_paths",
		mcp.WithDescription("Ordered stations and distances between two stations on the same line"),
		mcp.WithString("from_station_code", mcp.Required(), mcp.Description("Starting station code")),
		mcp.WithString("to_station_code", mcp.Required(), mcp.Description("Destination station code")),
	)
	entrances := mcp.NewTool("rail_station_entrances",
		append([]mcp.ToolOption{mcp.WithDescription("Station entrances near a point")}, pointOptions()...)...,
	)
	predictions := mcp.NewTool("rail_predictions",
		mcp.WithDescription("Next-train arrival predictions; omit station_codes for every station"),
		mcp.WithString("station_codes", mcp.Description("Comma-separated station codes, e.g. A10,A11")),
	)

	s.AddTool(lines, rh.handleLines)
	s.AddTool(stations, rh.handleStations)
	s.AddTool(info, rh.handleStationInfo)
	s.AddTool(paths, rh.handlePaths)
	s.AddTool(entrances, rh.handleEntrances)
	s.AddTool(predictions, rh.handlePredictions)
	return nil
}

func (rh *RailHandler) handleLines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, "rail_lines", func(cb wmata.Callback) error {
		return rh.client.RailLines(ctx, cb)
	})
}

func (rh *RailHandler) handleStations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("line_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "rail_stations", func(cb wmata.Callback) error {
		return rh.client.RailStations(ctx, line, cb)
	})
}

func (rh *RailHandler) handleStationInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("station_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "rail_station_info", func(cb wmata.Callback) error {
		return rh.client.RailStationInfo(ctx, code, cb)
	})
}

func (rh *RailHandler) handlePaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from_station_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to_station_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "rail_paths", func(cb wmata.Callback) error {
		return rh.client.RailPaths(ctx, from, to, cb)
	})
}

func (rh *RailHandler) handleEntrances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lon, radius, err := point(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return run(ctx, "rail_station_entrances", func(cb wmata.Callback) error {
		return rh.client.RailStationEntrances(ctx, lat, lon, radius, cb)
	})
}

func (rh *RailHandler) handlePredictions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	codes := splitCodes(stringArg(req, "station_codes"))
	return run(ctx, "rail_predictions", func(cb wmata.Callback) error {
		return rh.client.RailStationPrediction(ctx, codes, cb)
	})
}
