package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/rules"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "lint.fail_on").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if len(cfg.Projects) == 0 {
		errs = append(errs, FieldError{Field: "projects", Message: "at least one project directory is required"})
	}
	for i, dir := range cfg.Projects {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("projects[%d]", i), Message: "project directory is empty"})
		}
	}
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{Field: "workers", Message: "workers must be at least 1"})
	}

	errs = append(errs, validateLint(&cfg.Lint)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// FailOnSeverity returns the parsed fail_on threshold. ok is false when the
// threshold is "none".
func (c *LintConfig) FailOnSeverity() (sev diagnostic.Severity, ok bool, err error) {
	if strings.EqualFold(c.FailOn, "none") {
		return 0, false, nil
	}
	sev, err = diagnostic.ParseSeverity(c.FailOn)
	return sev, err == nil, err
}

// MinSeverityLevel returns the parsed min_severity filter.
func (c *LintConfig) MinSeverityLevel() (diagnostic.Severity, error) {
	return diagnostic.ParseSeverity(c.MinSeverity)
}

func validateLint(cfg *LintConfig) []FieldError {
	var errs []FieldError

	if _, _, err := cfg.FailOnSeverity(); err != nil {
		errs = append(errs, FieldError{
			Field:   "lint.fail_on",
			Message: fmt.Sprintf("%v, or 'none'", err),
		})
	}
	if _, err := cfg.MinSeverityLevel(); err != nil {
		errs = append(errs, FieldError{
			Field:   "lint.min_severity",
			Message: err.Error(),
		})
	}

	for i, name := range cfg.DisabledRules {
		if !slices.Contains(rules.Names(), name) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("lint.disabled_rules[%d]", i),
				Message: fmt.Sprintf("unknown rule %q (valid: %s)", name, strings.Join(rules.Names(), ", ")),
			})
		}
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.Policies)) {
		if !slices.Contains(rules.PolicyNames(), name) {
			errs = append(errs, FieldError{
				Field:   "lint.policies." + name,
				Message: fmt.Sprintf("rule has no name table (valid: %s)", strings.Join(rules.PolicyNames(), ", ")),
			})
		}
	}

	for i, name := range cfg.KnownVariables {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("lint.known_variables[%d]", i),
				Message: "variable name is empty",
			})
		}
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	validFormats := []string{"table", "text", "json", "csv"}
	if !slices.Contains(validFormats, cfg.Format) {
		return []FieldError{{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid output format %q: must be one of %s", cfg.Format, strings.Join(validFormats, ", ")),
		}}
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Level == "" {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Format == "" {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Format),
		})
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: "metrics path must start with '/'",
		})
	}
	for i := 1; i < len(cfg.DurationBuckets); i++ {
		if cfg.DurationBuckets[i] <= cfg.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "metrics.duration_buckets",
				Message: "buckets must be in increasing order",
			})
			break
		}
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must not be negative",
		})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "watch.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
			})
		}
	}

	return errs
}
