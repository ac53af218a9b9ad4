package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		gatewayRequestsTotal,
		gatewayRequestDuration,
	)
}

var (
	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Identity gateway calls by operation and outcome.",
		},
		[]string{"gateway", "op", "result"},
	)

	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Identity gateway call latency in seconds.",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"gateway", "op"},
	)
)

func ObserveGatewayCall(gateway, op string, d time.Duration, ok bool) {
	gatewayRequestsTotal.WithLabelValues(norm(gateway), norm(op), result(ok)).Inc()
	gatewayRequestDuration.WithLabelValues(norm(gateway), norm(op)).Observe(d.Seconds())
}
