package config

import (
	"time"

	"mercator-hq/sdclint/pkg/lint/policy"
)

// Config is the root configuration structure for sdclint.
// It is usually read from .sdclint.yaml at the root of a repository.
type Config struct {
	// Projects lists the directories scanned for component definitions.
	// Command-line arguments replace this list.
	// Default: ["."]
	Projects []string `yaml:"projects"`

	// Lint contains the rule, policy and threshold settings.
	Lint LintConfig `yaml:"lint"`

	// Output controls how reports are rendered.
	Output OutputConfig `yaml:"output"`

	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Watch contains settings for the watch command.
	Watch WatchConfig `yaml:"watch"`

	// Workers is the number of components validated in parallel.
	// Default: number of CPUs
	Workers int `yaml:"workers"`
}

// LintConfig contains the linter settings.
type LintConfig struct {
	// FailOn is the severity at or above which a run exits non-zero.
	// Options: "emergency" .. "debug", or "none" to never fail.
	// Default: "error"
	FailOn string `yaml:"fail_on"`

	// MinSeverity hides diagnostics less severe than this level.
	// Default: "debug" (show everything)
	MinSeverity string `yaml:"min_severity"`

	// ReportUnusedInputs adds declared props and slots that the template
	// never reads to the unused variables diagnostic.
	// Default: false
	ReportUnusedInputs bool `yaml:"report_unused_inputs"`

	// KnownVariables are names provided by the rendering environment,
	// such as global variables of a theme.
	KnownVariables []string `yaml:"known_variables"`

	// DisabledRules lists rule names that never run.
	DisabledRules []string `yaml:"disabled_rules"`

	// Policies overrides the name tables of the filter, function and name
	// rules. Keys are rule names.
	Policies map[string]policy.Overlay `yaml:"policies"`

	// ExcerptLength is the number of source lines attached to each
	// diagnostic. Zero selects the default; negative disables excerpts.
	// Default: 1
	ExcerptLength int `yaml:"excerpt_length"`
}

// OutputConfig contains report rendering configuration.
type OutputConfig struct {
	// Format is the report format.
	// Options: "table", "text", "json", "csv"
	// Default: "table"
	Format string `yaml:"format"`

	// Progress shows a progress indicator on stderr during batch runs.
	// Default: false
	Progress bool `yaml:"progress"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "sdclint"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "lint"
	Subsystem string `yaml:"subsystem"`

	// Textfile is a path the metrics are written to after each run, in the
	// node_exporter textfile collector format. Empty disables the file.
	Textfile string `yaml:"textfile"`

	// Address is the listen address of the metrics endpoint in watch mode.
	// Empty disables the endpoint.
	// Example: ":9090"
	Address string `yaml:"address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// DurationBuckets defines histogram buckets for validation durations
	// (seconds).
	// Default: [0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "sdclint"
	ServiceName string `yaml:"service_name"`
}

// WatchConfig contains configuration for the watch command.
type WatchConfig struct {
	// Debounce is how long file events are collected before the affected
	// components are validated again.
	// Default: 300ms
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is a cron expression for periodic full runs, such as
	// "@every 1h" or "0 3 * * *". Empty disables scheduled runs.
	Schedule string `yaml:"schedule"`
}
