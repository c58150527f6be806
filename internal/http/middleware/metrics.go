package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Limiter label values.
const (
	limiterMemory = "memory"
	limiterRedis  = "redis"
	limiterRound  = "round"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rate_limiter_requests_total",
			Help: "Requests let through by the API rate limiters, by limiter and route",
		},
		[]string{"limiter", "endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rps_rate_limiter_blocked_total",
			Help: "Requests answered 429 by the API rate limiters, by limiter and route",
		},
		[]string{"limiter", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
}
