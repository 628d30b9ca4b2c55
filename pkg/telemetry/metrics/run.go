package metrics

import (
	"time"

	"mercator-hq/sdclint/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks batch runs over one or more projects.
//
// Metrics:
//   - sdclint_lint_runs_total: runs by trigger and status
//   - sdclint_lint_run_duration_seconds: run wall time
//   - sdclint_lint_run_components: components validated by the last run
//   - sdclint_lint_last_run_timestamp_seconds: end time of the last run
type RunMetrics struct {
	runsTotal *prometheus.CounterVec

	runDuration *prometheus.HistogramVec

	components prometheus.Gauge

	lastRun prometheus.Gauge
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of lint runs",
			},
			[]string{"trigger", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Wall time of lint runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"trigger"},
		),

		components: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_components",
				Help:      "Number of components validated by the last run",
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.components,
		rm.lastRun,
	)

	return rm
}

// RecordRun records a finished run.
func (rm *RunMetrics) RecordRun(trigger string, components int, failed bool, duration time.Duration) {
	status := "passed"
	if failed {
		status = "failed"
	}
	rm.runsTotal.WithLabelValues(trigger, status).Inc()
	rm.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	rm.components.Set(float64(components))
	rm.lastRun.SetToCurrentTime()
}
