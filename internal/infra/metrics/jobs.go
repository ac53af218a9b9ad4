package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(schedulerJobRunsTotal, schedulerJobDuration) }

var (
	schedulerJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_job_runs_total",
			Help:      "Runs of scheduled jobs by job name, trigger and outcome.",
		},
		[]string{"job", "trigger", "result"}, // trigger: startup | cron spec | interval | manual
	)

	schedulerJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_job_duration_seconds",
			Help:      "Duration of scheduled job runs in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		},
		[]string{"job"},
	)
)

func ObserveJobRun(job, trigger string, d time.Duration, ok bool) {
	schedulerJobRunsTotal.WithLabelValues(norm(job), trigger, result(ok)).Inc()
	schedulerJobDuration.WithLabelValues(norm(job)).Observe(d.Seconds())
}
