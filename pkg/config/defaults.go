package config

import (
	"runtime"
	"time"
)

// DefaultConfigFile is the configuration file looked up in the working
// directory when no --config flag is given.
const DefaultConfigFile = ".sdclint.yaml"

// Default values for configuration fields.
const (
	// Lint defaults
	DefaultFailOn        = "error"
	DefaultMinSeverity   = "debug"
	DefaultExcerptLength = 1

	// Output defaults
	DefaultOutputFormat = "table"

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "console"

	// Metrics defaults
	DefaultMetricsNamespace = "sdclint"
	DefaultMetricsSubsystem = "lint"
	DefaultMetricsPath      = "/metrics"

	// Tracing defaults
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "sdclint"

	// Watch defaults
	DefaultWatchDebounce = 300 * time.Millisecond
)

// DefaultDurationBuckets covers single templates (sub-millisecond) up to
// large batches.
var DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Projects) == 0 {
		cfg.Projects = []string{"."}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	// Lint defaults
	if cfg.Lint.FailOn == "" {
		cfg.Lint.FailOn = DefaultFailOn
	}
	if cfg.Lint.MinSeverity == "" {
		cfg.Lint.MinSeverity = DefaultMinSeverity
	}
	if cfg.Lint.ExcerptLength == 0 {
		cfg.Lint.ExcerptLength = DefaultExcerptLength
	}

	// Output defaults
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
