package server

import "github.com/prometheus/client_golang/prometheus"

var calculations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clubliq_calculations_total",
		Help: "Calculator requests by endpoint and outcome",
	},
	[]string{"endpoint", "outcome"},
)

func init() {
	prometheus.MustRegister(calculations)
}
