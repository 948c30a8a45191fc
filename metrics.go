package wmata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "wmata_client",
		Name:      "requests_total",
		Help:      "Endpoint calls accepted for delivery.",
	},
	[]string{"module", "endpoint"},
)
