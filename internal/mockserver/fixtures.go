package mockserver

import (
	"github.com/mycelian/wmata/internal/types"
)

func strptr(s string) *string { return &s }

var metroCenter = types.Station{
	Code:             "A01",
	Name:             "Metro Center",
	StationTogether1: "C01",
	LineCode1:        "RD",
	Lat:              38.898303,
	Lon:              -77.028099,
	Address:          types.Address{Street: "607 13th St. NW", City: "Washington", State: "DC", Zip: "20005"},
}

var galleryPlace = types.Station{
	Code:             "B01",
	Name:             "Gallery Pl-Chinatown",
	StationTogether1: "F01",
	LineCode1:        "RD",
	Lat:              38.898303,
	Lon:              -77.021918,
	Address:          types.Address{Street: "630 H St. NW", City: "Washington", State: "DC", Zip: "20001"},
}

var lenfant = types.Station{
	Code:             "D03",
	Name:             "L'Enfant Plaza",
	StationTogether1: "F03",
	LineCode1:        "BL",
	LineCode2:        strptr("OR"),
	LineCode3:        strptr("SV"),
	Lat:              38.884775,
	Lon:              -77.021964,
	Address:          types.Address{Street: "600 Maryland Ave. SW", City: "Washington", State: "DC", Zip: "20024"},
}

// trains backs GetPrediction; requests filter it by LocationCode.
var trains = []types.Train{
	{Car: "8", Destination: "Glenmont", DestinationCode: "B11", DestinationName: "Glenmont", Group: "1", Line: "RD", LocationCode: "A01", LocationName: "Metro Center", Min: "3"},
	{Car: "6", Destination: "Shady Gr", DestinationCode: "A15", DestinationName: "Shady Grove", Group: "2", Line: "RD", LocationCode: "A01", LocationName: "Metro Center", Min: "ARR"},
	{Car: "8", Destination: "Largo", DestinationCode: "G05", DestinationName: "Downtown Largo", Group: "1", Line: "BL", LocationCode: "A10", LocationName: "Medical Center", Min: "7"},
	{Car: "8", Destination: "Shady Gr", DestinationCode: "A15", DestinationName: "Shady Grove", Group: "2", Line: "RD", LocationCode: "A11", LocationName: "Grosvenor-Strathmore", Min: "BRD"},
}

// defaultFixtures maps "Module/Resource" to the body served for it.
func defaultFixtures() map[string]any {
	return map[string]any{
		"Bus/JBusPositions": types.BusPositionsResponse{BusPositions: []types.BusPosition{
			{VehicleID: "7211", Lat: 38.878, Lon: -76.9896, Deviation: 2, DateTime: "2010-12-08T14:03:21", TripID: "17045_15", RouteID: "10A", DirectionText: "NORTH", TripHeadsign: "PENTAGON"},
		}},
		"NextBusService/JPredictions": types.BusPredictionResponse{StopName: "Pennsylvania Ave + 7th St", Predictions: []types.BusArrival{
			{RouteID: "32", DirectionText: "East to Southern Ave Station", DirectionNum: "0", Minutes: 4, VehicleID: "6414", TripID: "990"},
		}},
		"Bus/JRouteDetails": map[string]any{
			"RouteID":    "10A",
			"Name":       "10A - HUNTING POINT - PENTAGON",
			"Direction0": map[string]any{"DirectionNum": "0", "DirectionText": "NORTH", "TripHeadsign": "PENTAGON"},
			"Direction1": map[string]any{"DirectionNum": "1", "DirectionText": "SOUTH", "TripHeadsign": "HUNTING POINT"},
		},
		"Bus/JRoutes": types.RoutesResponse{Routes: []types.Route{
			{RouteID: "10A", Name: "10A - HUNTING POINT - PENTAGON", LineDescription: "Alexandria-Pentagon Line"},
			{RouteID: "32", Name: "32 - SOUTHERN AVE STA - POTOMAC PARK", LineDescription: "Pennsylvania Ave Line"},
		}},
		"Bus/JRouteSchedule": map[string]any{
			"Name":       "10A - HUNTING POINT - PENTAGON",
			"Direction0": []any{map[string]any{"TripID": "17045_15", "StartTime": "2010-12-08T05:40:00", "EndTime": "2010-12-08T06:15:00"}},
			"Direction1": []any{},
		},
		"Bus/JStops": types.StopsResponse{Stops: []types.Stop{
			{StopID: "1001195", Name: "PENNSYLVANIA AVE NW + 7TH ST NW", Lat: 38.8932, Lon: -77.0218, Routes: []string{"32", "34", "36"}},
		}},
		"Bus/JStopSchedule": map[string]any{
			"Stop":             map[string]any{"StopID": "2000019", "Name": "S GLEBE RD + 24TH ST S"},
			"ScheduleArrivals": []any{map[string]any{"RouteID": "10A", "ScheduleTime": "2010-12-08T06:01:00", "TripHeadsign": "PENTAGON"}},
		},
		"Incidents/ElevatorIncidents": types.ElevatorIncidentsResponse{ElevatorIncidents: []types.ElevatorIncident{
			{UnitName: "A03N01", UnitType: "ESCALATOR", StationCode: "A03", StationName: "Dupont Circle", LocationDescription: "North entrance", SymptomDescription: "Service Call", DateOutOfServ: "2010-12-08T06:00:00", DateUpdated: "2010-12-08T07:12:00", EstimatedReturnToService: "2010-12-09T23:59:59"},
		}},
		"Incidents/Incidents": types.IncidentsResponse{Incidents: []types.Incident{
			{IncidentID: "3754F8B2-A0A6-494E-A4B5-82C9E72DFA74", Description: "Red Line: Expect residual delays to Glenmont due to an earlier signal problem.", IncidentType: "Delay", LinesAffected: "RD;", DateUpdated: "2010-12-08T07:38:00"},
		}},
		"Rail/JLines": types.LinesResponse{Lines: []types.Line{
			{LineCode: "BL", DisplayName: "Blue", StartStationCode: "J03", EndStationCode: "G05"},
			{LineCode: "OR", DisplayName: "Orange", StartStationCode: "K08", EndStationCode: "D13"},
			{LineCode: "RD", DisplayName: "Red", StartStationCode: "A15", EndStationCode: "B11"},
		}},
		"Rail/JPath": types.PathResponse{Path: []types.PathItem{
			{SeqNum: 1, LineCode: "RD", StationCode: "A10", StationName: "Medical Center", DistanceToPrev: 0},
			{SeqNum: 2, LineCode: "RD", StationCode: "A11", StationName: "Grosvenor-Strathmore", DistanceToPrev: 11207},
			{SeqNum: 3, LineCode: "RD", StationCode: "A12", StationName: "North Bethesda", DistanceToPrev: 7423},
		}},
		"Rail/JStationEntrances": types.StationEntrancesResponse{Entrances: []types.StationEntrance{
			{ID: "1", Name: "NORTHEAST CORNER OF 12TH & G STREETS", Description: "Building entrance from 12th and G streets", StationCode1: "A01", StationCode2: "C01", Lat: 38.8984, Lon: -77.0280},
		}},
		"Rail/JStationInfo": metroCenter,
		"Rail/JStations":    types.StationsResponse{Stations: []types.Station{metroCenter, galleryPlace, lenfant}},
	}
}

// predictionsFor filters trains by station code; "All" returns every train.
func predictionsFor(codes []string) types.PredictionResponse {
	if len(codes) == 1 && codes[0] == "All" {
		return types.PredictionResponse{Trains: trains}
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	out := types.PredictionResponse{Trains: []types.Train{}}
	for _, t := range trains {
		if want[t.LocationCode] {
			out.Trains = append(out.Trains, t)
		}
	}
	return out
}
