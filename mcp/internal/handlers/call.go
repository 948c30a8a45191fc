// Package handlers exposes WMATA endpoints as MCP tools.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/wmata"
)

// dateLayout accepts both 2010-12-08 and 2010-12-8.
const dateLayout = "2006-1-2"

// run issues one call through Await and renders the JSON result as text.
// Failures become tool errors, not protocol errors.
func run(ctx context.Context, tool string, call func(wmata.Callback) error) (*mcp.CallToolResult, error) {
	start := time.Now()
	result, err := wmata.Await(ctx, call)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("tool", tool).Dur("elapsed", elapsed).Msg("tool call failed")
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err)), nil
	}
	log.Debug().Str("tool", tool).Dur("elapsed", elapsed).Msg("tool call finished")

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: encode result: %v", tool, err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func floatArg(req mcp.CallToolRequest, key string) (float64, error) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

func boolArg(req mcp.CallToolRequest, key string) bool {
	v, _ := req.GetArguments()[key].(bool)
	return v
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// dateArg parses key, defaulting to today when absent.
func dateArg(req mcp.CallToolRequest, key string) (time.Time, error) {
	raw := stringArg(req, key)
	if raw == "" {
		return time.Now(), nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must look like 2010-12-8: %w", key, err)
	}
	return d, nil
}

// point reads the lat/lon/radius triple shared by the geo tools.
func point(req mcp.CallToolRequest) (lat, lon, radius float64, err error) {
	if lat, err = floatArg(req, "lat"); err != nil {
		return
	}
	if lon, err = floatArg(req, "lon"); err != nil {
		return
	}
	radius, err = floatArg(req, "radius")
	return
}

func pointOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude of the centre point")),
		mcp.WithNumber("lon", mcp.Required(), mcp.Description("Longitude of the centre point")),
		mcp.WithNumber("radius", mcp.Required(), mcp.Description("Search radius in metres")),
	}
}

// splitCodes turns "A10, A11" into [A10 A11]; empty input means every station.
func splitCodes(raw string) []string {
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
