package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoomsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_rooms_open",
			Help: "Rooms currently held by the relay",
		},
	)
	FramesRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_total",
			Help: "Frames forwarded between paired peers",
		},
	)
	JoinFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_join_failures_total",
			Help: "Rejected join attempts by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(RoomsOpen)
	prometheus.MustRegister(FramesRelayed)
	prometheus.MustRegister(JoinFailures)
}
