package fx

import "github.com/prometheus/client_golang/prometheus"

var (
	rateRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubliq_rate_requests_total",
			Help: "Exchange rate provider requests by result",
		},
		[]string{"result"},
	)

	rateRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clubliq_rate_request_duration_seconds",
			Help:    "Latency of exchange rate provider requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubliq_rate_cache_lookups_total",
			Help: "Exchange rate cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(rateRequests)
	prometheus.MustRegister(rateRequestDuration)
	prometheus.MustRegister(cacheLookups)
}
