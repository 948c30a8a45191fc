package connection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	wmataerrors "github.com/mycelian/wmata/internal/errors"
)

const (
	outcomeOK         = "ok"
	outcomeHTTPStatus = "http_status"
	outcomeTransport  = "transport"
	outcomeParse      = "parse"
)

var (
	connectionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmata_client",
			Subsystem: "connection",
			Name:      "issued_total",
			Help:      "Requests handed to the executor.",
		},
		[]string{"scheme"},
	)

	connectionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmata_client",
			Subsystem: "connection",
			Name:      "outcomes_total",
			Help:      "Delivered callbacks by outcome.",
		},
		[]string{"outcome"},
	)

	connectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wmata_client",
			Subsystem: "connection",
			Name:      "duration_seconds",
			Help:      "Time from first byte sent to callback delivery.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	connectionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wmata_client",
			Subsystem: "connection",
			Name:      "in_flight",
			Help:      "Issued requests that have not delivered yet.",
		},
	)
)

func outcomeFor(err error) string {
	switch {
	case wmataerrors.Is(err, wmataerrors.KindHTTPStatus):
		return outcomeHTTPStatus
	case wmataerrors.Is(err, wmataerrors.KindParse):
		return outcomeParse
	default:
		return outcomeTransport
	}
}
