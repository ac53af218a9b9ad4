package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		cdkGeneratedTotal,
		cdkRedemptionsTotal,
		cdkLazyExpiredTotal,
	)
}

var (
	cdkGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cdk_generated_total",
			Help:      "Total number of CDKs generated.",
		},
	)

	cdkRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cdk_redemptions_total",
			Help:      "Redemption attempts by kind and outcome.",
		},
		[]string{"kind", "result"}, // kind: new|renewal|unknown; result: ok or an error class
	)

	cdkLazyExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cdk_lazy_expired_total",
			Help:      "CDKs transitioned unused->expired on validation.",
		},
	)
)

func AddCDKGenerated(n int) {
	cdkGeneratedTotal.Add(float64(n))
}

func IncRedemption(kind, outcome string) {
	cdkRedemptionsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncCDKLazyExpired() {
	cdkLazyExpiredTotal.Inc()
}
