package wmata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Module is a logical API group sharing a URL path prefix.
type Module string

const (
	ModuleBus               Module = "Bus"
	ModuleRail              Module = "Rail"
	ModuleIncidents         Module = "Incidents"
	ModuleNextBusService    Module = "NextBusService"
	ModuleStationPrediction Module = "StationPrediction"
)

// ResponseFormat is the serialization path segment of every request.
const ResponseFormat = "json"

// Endpoint names one API operation.
type Endpoint struct {
	Name     string
	Module   Module
	Resource string
}

var (
	EndpointBusPositions          = Endpoint{"busPositions", ModuleBus, "JBusPositions"}
	EndpointBusPrediction         = Endpoint{"busPrediction", ModuleNextBusService, "JPredictions"}
	EndpointBusRouteDetails       = Endpoint{"busRouteDetails", ModuleBus, "JRouteDetails"}
	EndpointBusRoutes             = Endpoint{"busRoutes", ModuleBus, "JRoutes"}
	EndpointBusRouteSchedule      = Endpoint{"busRouteSchedule", ModuleBus, "JRouteSchedule"}
	EndpointBusStops              = Endpoint{"busStops", ModuleBus, "JStops"}
	EndpointBusStopSchedule       = Endpoint{"busStopSchedule", ModuleBus, "JStopSchedule"}
	EndpointElevatorIncidents     = Endpoint{"elevatorIncidents", ModuleIncidents, "ElevatorIncidents"}
	EndpointRailIncidents         = Endpoint{"railIncidents", ModuleIncidents, "Incidents"}
	EndpointRailLines             = Endpoint{"railLines", ModuleRail, "JLines"}
	EndpointRailPaths             = Endpoint{"railPaths", ModuleRail, "JPath"}
	EndpointRailStationEntrances  = Endpoint{"railStationEntrances", ModuleRail, "JStationEntrances"}
	EndpointRailStationInfo       = Endpoint{"railStationInfo", ModuleRail, "JStationInfo"}
	EndpointRailStationPrediction = Endpoint{"railStationPrediction", ModuleStationPrediction, "GetPrediction"}
	EndpointRailStations          = Endpoint{"railStations", ModuleRail, "JStations"}
)

// Endpoints lists every operation in API order.
var Endpoints = []Endpoint{
	EndpointBusPositions,
	EndpointBusPrediction,
	EndpointBusRouteDetails,
	EndpointBusRoutes,
	EndpointBusRouteSchedule,
	EndpointBusStops,
	EndpointBusStopSchedule,
	EndpointElevatorIncidents,
	EndpointRailIncidents,
	EndpointRailLines,
	EndpointRailPaths,
	EndpointRailStationEntrances,
	EndpointRailStationInfo,
	EndpointRailStationPrediction,
	EndpointRailStations,
}

// allStations selects every station in a prediction request.
const allStations = "All"

// query keeps parameters in the order they were added.
type query []param

type param struct{ key, value string }

func (q query) add(key, value string) query { return append(q, param{key, value}) }

func (q query) addFloat(key string, f float64) query {
	return q.add(key, strconv.FormatFloat(f, 'f', -1, 64))
}

func (q query) addBool(key string, b bool) query { return q.add(key, strconv.FormatBool(b)) }

func (q query) addDate(key string, t time.Time) query { return q.add(key, formatDate(t)) }

func (q query) encode() string {
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, escape(p.key)+"="+escape(p.value))
	}
	return strings.Join(parts, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// formatDate renders year-month-day without zero padding, e.g. 2010-1-5.
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// stationPredictionResource joins station codes into the GetPrediction path.
func stationPredictionResource(codes []string) string {
	if len(codes) == 0 {
		return EndpointRailStationPrediction.Resource + "/" + allStations
	}
	return EndpointRailStationPrediction.Resource + "/" + strings.Join(codes, ",")
}

func (c *Client) requestURL(module Module, resource string, q query) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/")
	b.WriteString(string(module))
	b.WriteString(".svc/")
	b.WriteString(ResponseFormat)
	b.WriteString("/")
	b.WriteString(resource)
	b.WriteString("?")
	if qs := q.encode(); qs != "" {
		b.WriteString(qs)
		b.WriteString("&")
	}
	b.WriteString("api_key=")
	b.WriteString(c.apiKey)
	return b.String()
}

func (c *Client) issue(ctx context.Context, ep Endpoint, resource string, q query, cb Callback) error {
	if atomic.LoadUint32(&c.closedOnce) == 1 {
		return ErrClientClosed
	}
	rawURL := c.requestURL(ep.Module, resource, q)
	log.Debug().
		Str("endpoint", ep.Name).
		Str("resource", resource).
		Str("query", q.encode()).
		Msg("built request url")

	if err := c.conns.IssueRequest(ctx, rawURL, cb); err != nil {
		return submitError(err)
	}
	requestsTotal.WithLabelValues(string(ep.Module), ep.Name).Inc()
	return nil
}

func (c *Client) call(ctx context.Context, ep Endpoint, q query, cb Callback) error {
	return c.issue(ctx, ep, ep.Resource, q, cb)
}

// --------------------------------------------------------------------
// Bus
// --------------------------------------------------------------------

// BusPositions returns bus positions for a route within radius metres of a
// point.
func (c *Client) BusPositions(ctx context.Context, routeID string, includeVariations bool, lat, lon, radius float64, cb Callback) error {
	q := query{}.
		add("routeId", routeID).
		addBool("includingVariations", includeVariations).
		addFloat("lat", lat).
		addFloat("lon", lon).
		addFloat("radius", radius)
	return c.call(ctx, EndpointBusPositions, q, cb)
}

// BusPrediction returns arrival predictions for a stop.
func (c *Client) BusPrediction(ctx context.Context, stopID string, cb Callback) error {
	return c.call(ctx, EndpointBusPrediction, query{}.add("StopID", stopID), cb)
}

// BusRouteDetails returns the shape and stops of a route on date.
func (c *Client) BusRouteDetails(ctx context.Context, routeID string, date time.Time, cb Callback) error {
	q := query{}.add("routeId", routeID).addDate("date", date)
	return c.call(ctx, EndpointBusRouteDetails, q, cb)
}

// BusRoutes returns every bus route.
func (c *Client) BusRoutes(ctx context.Context, cb Callback) error {
	return c.call(ctx, EndpointBusRoutes, nil, cb)
}

// BusRouteSchedule returns the trips of a route on date.
func (c *Client) BusRouteSchedule(ctx context.Context, routeID string, date time.Time, includeVariations bool, cb Callback) error {
	q := query{}.
		add("routeId", routeID).
		addDate("date", date).
		addBool("includingVariations", includeVariations)
	return c.call(ctx, EndpointBusRouteSchedule, q, cb)
}

// BusStops returns the stops within radius metres of a point.
func (c *Client) BusStops(ctx context.Context, lat, lon, radius float64, cb Callback) error {
	q := query{}.addFloat("lat", lat).addFloat("lon", lon).addFloat("radius", radius)
	return c.call(ctx, EndpointBusStops, q, cb)
}

// BusStopSchedule returns the scheduled arrivals at a stop on date.
func (c *Client) BusStopSchedule(ctx context.Context, stopID string, date time.Time, includeVariations bool, cb Callback) error {
	q := query{}.
		add("stopId", stopID).
		addDate("date", date).
		addBool("includingVariations", includeVariations)
	return c.call(ctx, EndpointBusStopSchedule, q, cb)
}

// --------------------------------------------------------------------
// Incidents
// --------------------------------------------------------------------

// ElevatorIncidents returns elevator and escalator outages. An empty station
// code selects every station.
func (c *Client) ElevatorIncidents(ctx context.Context, stationCode string, cb Callback) error {
	return c.call(ctx, EndpointElevatorIncidents, query{}.add("StationCode", stationCode), cb)
}

// RailIncidents returns current rail incidents.
func (c *Client) RailIncidents(ctx context.Context, cb Callback) error {
	return c.call(ctx, EndpointRailIncidents, nil, cb)
}

// --------------------------------------------------------------------
// Rail
// --------------------------------------------------------------------

// RailLines returns every rail line.
func (c *Client) RailLines(ctx context.Context, cb Callback) error {
	return c.call(ctx, EndpointRailLines, nil, cb)
}

// RailPaths returns the ordered stations between two stations on one line.
func (c *Client) RailPaths(ctx context.Context, fromStationCode, toStationCode string, cb Callback) error {
	q := query{}.add("FromStationCode", fromStationCode).add("ToStationCode", toStationCode)
	return c.call(ctx, EndpointRailPaths, q, cb)
}

// RailStationEntrances returns station entrances within radius metres of a
// point.
func (c *Client) RailStationEntrances(ctx context.Context, lat, lon, radius float64, cb Callback) error {
	q := query{}.addFloat("lat", lat).addFloat("lon", lon).addFloat("radius", radius)
	return c.call(ctx, EndpointRailStationEntrances, q, cb)
}

// RailStationInfo returns the location and lines of one station.
func (c *Client) RailStationInfo(ctx context.Context, stationCode string, cb Callback) error {
	return c.call(ctx, EndpointRailStationInfo, query{}.add("StationCode", stationCode), cb)
}

// RailStationPrediction returns next-train predictions for the given
// stations, or for every station when codes is empty.
func (c *Client) RailStationPrediction(ctx context.Context, codes []string, cb Callback) error {
	ep := EndpointRailStationPrediction
	return c.issue(ctx, ep, stationPredictionResource(codes), nil, cb)
}

// RailStations returns the stations on a line.
func (c *Client) RailStations(ctx context.Context, lineCode string, cb Callback) error {
	return c.call(ctx, EndpointRailStations, query{}.add("LineCode", lineCode), cb)
}
