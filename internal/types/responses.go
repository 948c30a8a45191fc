// Package types holds the JSON shapes returned by the WMATA endpoints.
// Results are delivered untyped; these are targets for wmata.Decode.
package types

type LinesResponse struct {
	Lines []Line `json:"Lines"`
}

type StationsResponse struct {
	Stations []Station `json:"Stations"`
}

type PathResponse struct {
	Path []PathItem `json:"Path"`
}

type StationEntrancesResponse struct {
	Entrances []StationEntrance `json:"Entrances"`
}

type PredictionResponse struct {
	Trains []Train `json:"Trains"`
}

type IncidentsResponse struct {
	Incidents []Incident `json:"Incidents"`
}

type ElevatorIncidentsResponse struct {
	ElevatorIncidents []ElevatorIncident `json:"ElevatorIncidents"`
}

type RoutesResponse struct {
	Routes []Route `json:"Routes"`
}

type StopsResponse struct {
	Stops []Stop `json:"Stops"`
}

type BusPositionsResponse struct {
	BusPositions []BusPosition `json:"BusPositions"`
}

type BusPredictionResponse struct {
	StopName    string       `json:"StopName"`
	Predictions []BusArrival `json:"Predictions"`
}
