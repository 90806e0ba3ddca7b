package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myf_client_requests_total",
			Help: "Total number of backend requests issued by the client.",
		},
		[]string{"method", "route", "status"},
	)
	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myf_client_request_duration_seconds",
			Help:    "Backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(clientRequestsTotal, clientRequestDuration)
}

// observeRequest records one request. route is the path template, never the expanded path.
func observeRequest(method, route, status string, start time.Time) {
	clientRequestsTotal.WithLabelValues(method, route, status).Inc()
	clientRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
