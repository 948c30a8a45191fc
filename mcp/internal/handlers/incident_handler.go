package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mycelian/wmata"
)

// IncidentHandler exposes rail and elevator/escalator incidents.
type IncidentHandler struct {
	client *wmata.Client
}

func NewIncidentHandler(c *wmata.Client) *IncidentHandler { return &IncidentHandler{client: c} }

func (ih *IncidentHandler) RegisterTools(s *server.MCPServer) error {
	rail := mcp.NewTool("rail_incidents",
		mcp.WithDescription("Current rail delays and disruptions"),
	)
	elevator := mcp.NewTool("elevator_incidents",
		mcp.WithDescription("Elevator and escalator outages; omit station_code for every station"),
		mcp.WithString("station_code", mcp.Description("Station code, e.g. A03")),
	)
	s.AddTool(rail, ih.handleRailIncidents)
	s.AddTool(elevator, ih.handleElevatorIncidents)
	return nil
}

func (ih *IncidentHandler) handleRailIncidents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return run(ctx, "rail_incidents", func(cb wmata.Callback) error {
		return ih.client.RailIncidents(ctx, cb)
	})
}

func (ih *IncidentHandler) handleElevatorIncidents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	station := stringArg(req, "station_code")
	return run(ctx, "elevator_incidents", func(cb wmata.Callback) error {
		return ih.client.ElevatorIncidents(ctx, station, cb)
	})
}
