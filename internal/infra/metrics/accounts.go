package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sweepAccountsTotal,
		remoteResyncTotal,
		accountsRegisteredTotal,
		loginsTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	sweepAccountsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_sweep_accounts_total",
			Help:      "Per-account outcomes of the expiry sweep.",
		},
		[]string{"result"}, // ok | failed | remote_failed
	)

	remoteResyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_resync_total",
			Help:      "Re-sync attempts of pending remote enable/disable by outcome.",
		},
		[]string{"state", "result"},
	)

	accountsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_registered_total",
			Help:      "Total number of local accounts created.",
		},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	rateLimitTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_triggered_total",
			Help:      "Requests rejected by a rate limiter.",
		},
		[]string{"scope"},
	)
)

func AddSweepAccounts(outcome string, n int) {
	if n <= 0 {
		return
	}
	sweepAccountsTotal.WithLabelValues(norm(outcome)).Add(float64(n))
}

func IncRemoteResync(state string, ok bool) {
	remoteResyncTotal.WithLabelValues(norm(state), result(ok)).Inc()
}

func IncAccountsRegistered() {
	accountsRegisteredTotal.Inc()
}

func IncLogin(outcome string) {
	loginsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncRateLimitTriggered(scope string) {
	rateLimitTriggeredTotal.WithLabelValues(norm(scope)).Inc()
}
