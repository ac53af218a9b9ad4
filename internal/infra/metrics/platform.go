package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo, dbPool, dbAcquireTotal, cacheLookups) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1; labels carry the running build.",
		},
		[]string{"version", "commit", "go_version"},
	)

	dbPool = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_conns",
			Help:      "Postgres pool connections by state.",
		},
		[]string{"state"}, // total | idle | acquired | max
	)

	dbAcquireTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_acquire_count",
			Help:      "Cumulative successful acquires reported by the pool.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Redis read-through lookups by entity and outcome.",
		},
		[]string{"entity", "result"}, // entity: account | template | media; result: hit | miss | error
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

// PoolStats is the subset of pgxpool.Stat the gauges publish.
type PoolStats struct {
	Total, Idle, Acquired, Max int32
	AcquireCount               int64
}

func SetDBPoolStats(s PoolStats) {
	dbPool.WithLabelValues("total").Set(float64(s.Total))
	dbPool.WithLabelValues("idle").Set(float64(s.Idle))
	dbPool.WithLabelValues("acquired").Set(float64(s.Acquired))
	dbPool.WithLabelValues("max").Set(float64(s.Max))
	dbAcquireTotal.Set(float64(s.AcquireCount))
}

func IncCacheRequest(entity, result string) {
	cacheLookups.WithLabelValues(norm(entity), norm(result)).Inc()
}
