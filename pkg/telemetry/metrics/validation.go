package metrics

import (
	"time"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/lint/diagnostic"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks metrics related to single validations.
//
// Metrics:
//   - sdclint_lint_validations_total: validations by target and outcome
//   - sdclint_lint_validation_duration_seconds: validation duration histogram
//   - sdclint_lint_diagnostics_total: diagnostics by severity and kind
//   - sdclint_lint_rule_diagnostics_total: diagnostics by rule
//   - sdclint_lint_rule_failures_total: rules that panicked
type ValidationMetrics struct {
	validationsTotal *prometheus.CounterVec

	validationDuration *prometheus.HistogramVec

	diagnosticsTotal *prometheus.CounterVec

	ruleDiagnosticsTotal *prometheus.CounterVec

	ruleFailuresTotal *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics with the provided registry.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Total number of validated templates and components",
			},
			[]string{"target", "outcome"},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of a single validation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"target"},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported",
			},
			[]string{"severity", "kind"},
		),

		ruleDiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_diagnostics_total",
				Help:      "Total number of diagnostics reported per rule",
			},
			[]string{"rule"},
		),

		ruleFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_failures_total",
				Help:      "Total number of rules that failed while checking a node",
			},
			[]string{"rule"},
		),
	}

	registry.MustRegister(
		vm.validationsTotal,
		vm.validationDuration,
		vm.diagnosticsTotal,
		vm.ruleDiagnosticsTotal,
		vm.ruleFailuresTotal,
	)

	return vm
}

// RecordValidation records a finished validation.
//
// Parameters:
//   - target: "component" or "source"
//   - outcome: "clean", "diagnostics" or "parse_error"
//   - duration: validation duration
func (vm *ValidationMetrics) RecordValidation(target, outcome string, duration time.Duration) {
	vm.validationsTotal.WithLabelValues(target, outcome).Inc()
	vm.validationDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// RecordDiagnostic records a single diagnostic. Schema diagnostics carry no
// rule and are only counted by severity and kind.
func (vm *ValidationMetrics) RecordDiagnostic(severity diagnostic.Severity, kind diagnostic.Kind, rule string) {
	vm.diagnosticsTotal.WithLabelValues(severity.String(), string(kind)).Inc()
	if rule != "" {
		vm.ruleDiagnosticsTotal.WithLabelValues(rule).Inc()
	}
}

// RecordRuleFailure records a rule that failed on a node.
func (vm *ValidationMetrics) RecordRuleFailure(rule string) {
	vm.ruleFailuresTotal.WithLabelValues(rule).Inc()
}
