package workpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wmata_client",
		Subsystem: "workpool",
		Name:      "submissions_total",
		Help:      "Jobs accepted by Submit.",
	})

	rejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmata_client",
			Subsystem: "workpool",
			Name:      "rejected_total",
			Help:      "Submissions refused, by reason (full, closed).",
		},
		[]string{"reason"},
	)

	waitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wmata_client",
		Subsystem: "workpool",
		Name:      "wait_seconds",
		Help:      "Time from Submit until the job got a slot.",
		Buckets:   prometheus.DefBuckets,
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wmata_client",
		Subsystem: "workpool",
		Name:      "run_duration_seconds",
		Help:      "Time spent in Job.Run.",
		Buckets:   prometheus.DefBuckets,
	})

	running = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wmata_client",
		Subsystem: "workpool",
		Name:      "running",
		Help:      "Jobs currently holding a slot.",
	})

	pendingJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wmata_client",
		Subsystem: "workpool",
		Name:      "pending",
		Help:      "Jobs accepted whose Run has not returned.",
	})
)
