package types

// ------------------------------
// Rail
// ------------------------------

// Line is one rail line.
type Line struct {
	LineCode             string `json:"LineCode"`
	DisplayName          string `json:"DisplayName"`
	StartStationCode     string `json:"StartStationCode"`
	EndStationCode       string `json:"EndStationCode"`
	InternalDestination1 string `json:"InternalDestination1"`
	InternalDestination2 string `json:"InternalDestination2"`
}

// Address is a station street address.
type Address struct {
	Street string `json:"Street"`
	City   string `json:"City"`
	State  string `json:"State"`
	Zip    string `json:"Zip"`
}

// Station is one rail station.
type Station struct {
	Code             string  `json:"Code"`
	Name             string  `json:"Name"`
	StationTogether1 string  `json:"StationTogether1"`
	StationTogether2 string  `json:"StationTogether2"`
	LineCode1        string  `json:"LineCode1"`
	LineCode2        *string `json:"LineCode2"`
	LineCode3        *string `json:"LineCode3"`
	LineCode4        *string `json:"LineCode4"`
	Lat              float64 `json:"Lat"`
	Lon              float64 `json:"Lon"`
	Address          Address `json:"Address"`
}

// PathItem is one stop along a rail path.
type PathItem struct {
	SeqNum         int    `json:"SeqNum"`
	LineCode       string `json:"LineCode"`
	StationCode    string `json:"StationCode"`
	StationName    string `json:"StationName"`
	DistanceToPrev int    `json:"DistanceToPrev"`
}

// StationEntrance is one street entrance to a station.
type StationEntrance struct {
	ID           string  `json:"ID"`
	Name         string  `json:"Name"`
	Description  string  `json:"Description"`
	StationCode1 string  `json:"StationCode1"`
	StationCode2 string  `json:"StationCode2"`
	Lat          float64 `json:"Lat"`
	Lon          float64 `json:"Lon"`
}

// Train is one next-train prediction. Min is minutes, "ARR" or "BRD".
type Train struct {
	Car             string `json:"Car"`
	Destination     string `json:"Destination"`
	DestinationCode string `json:"DestinationCode"`
	DestinationName string `json:"DestinationName"`
	Group           string `json:"Group"`
	Line            string `json:"Line"`
	LocationCode    string `json:"LocationCode"`
	LocationName    string `json:"LocationName"`
	Min             string `json:"Min"`
}

// ------------------------------
// Incidents
// ------------------------------

// Incident is a rail service disruption.
type Incident struct {
	IncidentID    string `json:"IncidentID"`
	Description   string `json:"Description"`
	IncidentType  string `json:"IncidentType"`
	LinesAffected string `json:"LinesAffected"`
	DateUpdated   string `json:"DateUpdated"`
}

// ElevatorIncident is an elevator or escalator outage.
type ElevatorIncident struct {
	UnitName                 string `json:"UnitName"`
	UnitType                 string `json:"UnitType"`
	StationCode              string `json:"StationCode"`
	StationName              string `json:"StationName"`
	LocationDescription      string `json:"LocationDescription"`
	SymptomDescription       string `json:"SymptomDescription"`
	DateOutOfServ            string `json:"DateOutOfServ"`
	DateUpdated              string `json:"DateUpdated"`
	EstimatedReturnToService string `json:"EstimatedReturnToService"`
}

// ------------------------------
// Bus
// ------------------------------

// Route is one bus route.
type Route struct {
	RouteID         string `json:"RouteID"`
	Name            string `json:"Name"`
	LineDescription string `json:"LineDescription"`
}

// Stop is one bus stop.
type Stop struct {
	StopID string   `json:"StopID"`
	Name   string   `json:"Name"`
	Lat    float64  `json:"Lat"`
	Lon    float64  `json:"Lon"`
	Routes []string `json:"Routes"`
}

// BusPosition is the last reported location of one bus.
type BusPosition struct {
	VehicleID     string  `json:"VehicleID"`
	Lat           float64 `json:"Lat"`
	Lon           float64 `json:"Lon"`
	Deviation     float64 `json:"Deviation"`
	DateTime      string  `json:"DateTime"`
	TripID        string  `json:"TripID"`
	RouteID       string  `json:"RouteID"`
	DirectionText string  `json:"DirectionText"`
	TripHeadsign  string  `json:"TripHeadsign"`
}

// BusArrival is one predicted bus arrival at a stop.
type BusArrival struct {
	RouteID       string `json:"RouteID"`
	DirectionText string `json:"DirectionText"`
	DirectionNum  string `json:"DirectionNum"`
	Minutes       int    `json:"Minutes"`
	VehicleID     string `json:"VehicleID"`
	TripID        string `json:"TripID"`
}
