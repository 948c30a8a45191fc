package wmata

import "github.com/mycelian/wmata/internal/types"

// Public type aliases so callers can Decode results without importing
// internal packages.
type (
	// Rail
	Line            = types.Line
	Address         = types.Address
	Station         = types.Station
	PathItem        = types.PathItem
	StationEntrance = types.StationEntrance
	Train           = types.Train

	// Incidents
	Incident         = types.Incident
	ElevatorIncident = types.ElevatorIncident

	// Bus
	Route       = types.Route
	Stop        = types.Stop
	BusPosition = types.BusPosition
	BusArrival  = types.BusArrival

	// Responses
	LinesResponse             = types.LinesResponse
	StationsResponse          = types.StationsResponse
	PathResponse              = types.PathResponse
	StationEntrancesResponse  = types.StationEntrancesResponse
	PredictionResponse        = types.PredictionResponse
	IncidentsResponse         = types.IncidentsResponse
	ElevatorIncidentsResponse = types.ElevatorIncidentsResponse
	RoutesResponse            = types.RoutesResponse
	StopsResponse             = types.StopsResponse
	BusPositionsResponse      = types.BusPositionsResponse
	BusPredictionResponse     = types.BusPredictionResponse
)
