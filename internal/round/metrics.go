package round

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MovesRejected reasons.
const (
	RejectInvalid  = "invalid"
	RejectClosed   = "closed"
	RejectUnpaired = "unpaired"
	RejectInFlight = "in_flight"
)

var (
	RoundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rounds_resolved_total",
			Help: "Rounds resolved, by mode and local outcome",
		},
		[]string{"mode", "outcome"},
	)
	SeriesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_series_completed_total",
			Help: "Series that reached their win threshold",
		},
		[]string{"mode", "winner"},
	)
	MovesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_moves_rejected_total",
			Help: "Move submissions ignored, by mode and reason",
		},
		[]string{"mode", "reason"},
	)
)

func init() {
	prometheus.MustRegister(RoundsResolved)
	prometheus.MustRegister(SeriesCompleted)
	prometheus.MustRegister(MovesRejected)
}
