package metrics

import (
	"sync"
	"time"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/lint/diagnostic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in sdclint.
// It manages metric registration and provides a unified interface for
// recording validation and run metrics.
//
// A Collector is safe for concurrent use. When metrics are disabled in the
// configuration every Record call returns immediately.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Per-validation metrics
	validationMetrics *ValidationMetrics

	// Per-run metrics
	runMetrics *RunMetrics

	// Cardinality tracking for the rule label, which custom registries
	// may extend
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created so
// that collectors never leak into the global default registry.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		validationMetrics:  NewValidationMetrics(cfg, registry),
		runMetrics:         NewRunMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(100),
	}
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordValidation records one validated template or component.
//
// Parameters:
//   - target: "component" or "source"
//   - diags: the diagnostics the validation produced
//   - duration: time spent validating
//
// Example:
//
//	start := time.Now()
//	diags := v.ValidateComponent(def.ID, def)
//	collector.RecordValidation("component", diags, time.Since(start))
func (c *Collector) RecordValidation(target string, diags diagnostic.List, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.validationMetrics.RecordValidation(target, outcome(diags), duration)
	for _, d := range diags {
		rule := d.Rule
		if rule != "" && !c.cardinalityLimiter.Allow(rule) {
			rule = "other"
		}
		c.validationMetrics.RecordDiagnostic(d.Severity, d.Kind, rule)
	}
}

// RecordRuleFailure records a rule that panicked while checking a node.
func (c *Collector) RecordRuleFailure(rule string) {
	if !c.Enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow(rule) {
		rule = "other"
	}
	c.validationMetrics.RecordRuleFailure(rule)
}

// RecordRun records a completed batch run.
//
// Parameters:
//   - trigger: what started the run ("cli", "watch", "schedule")
//   - components: number of components validated
//   - failed: whether the run reached the fail_on threshold
//   - duration: wall time of the run
func (c *Collector) RecordRun(trigger string, components int, failed bool, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	c.runMetrics.RecordRun(trigger, components, failed, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// outcome classifies a validation result.
func outcome(diags diagnostic.List) string {
	for _, d := range diags {
		if d.Rule == "parse" {
			return "parse_error"
		}
	}
	if len(diags) > 0 {
		return "diagnostics"
	}
	return "clean"
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this value would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
