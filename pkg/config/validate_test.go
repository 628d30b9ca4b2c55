package config

import (
	"errors"
	"strings"
	"testing"

	"mercator-hq/sdclint/pkg/lint/policy"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(newTestConfig().Build()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}
	if !strings.Contains(validationErr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", validationErr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		errorField string
	}{
		{
			name:       "empty project",
			modify:     func(c *Config) { c.Projects = []string{"a", " "} },
			errorField: "projects[1]",
		},
		{
			name:       "zero workers",
			modify:     func(c *Config) { c.Workers = 0 },
			errorField: "workers",
		},
		{
			name:       "invalid min severity",
			modify:     func(c *Config) { c.Lint.MinSeverity = "loud" },
			errorField: "lint.min_severity",
		},
		{
			name:       "empty known variable",
			modify:     func(c *Config) { c.Lint.KnownVariables = []string{""} },
			errorField: "lint.known_variables[0]",
		},
		{
			name: "unknown policy rule",
			modify: func(c *Config) {
				c.Lint.Policies = map[string]policy.Overlay{"test": {Allow: []string{"x"}}}
			},
			errorField: "lint.policies.test",
		},
		{
			name:       "invalid output format",
			modify:     func(c *Config) { c.Output.Format = "xml" },
			errorField: "output.format",
		},
		{
			name:       "invalid logging level",
			modify:     func(c *Config) { c.Logging.Level = "trace" },
			errorField: "logging.level",
		},
		{
			name:       "invalid logging format",
			modify:     func(c *Config) { c.Logging.Format = "yaml" },
			errorField: "logging.format",
		},
		{
			name:       "unsorted buckets",
			modify:     func(c *Config) { c.Metrics.DurationBuckets = []float64{1, 0.5} },
			errorField: "metrics.duration_buckets",
		},
		{
			name: "metrics path",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Path = "metrics"
			},
			errorField: "metrics.path",
		},
		{
			name:       "tracing without endpoint",
			modify:     func(c *Config) { c.Tracing.Enabled = true },
			errorField: "tracing.endpoint",
		},
		{
			name:       "invalid sampler",
			modify:     func(c *Config) { c.Tracing.Sampler = "sometimes" },
			errorField: "tracing.sampler",
		},
		{
			name:       "sample ratio out of range",
			modify:     func(c *Config) { c.Tracing.SampleRatio = 1.5 },
			errorField: "tracing.sample_ratio",
		},
		{
			name:       "negative debounce",
			modify:     func(c *Config) { c.Watch.Debounce = -1 },
			errorField: "watch.debounce",
		},
		{
			name:       "invalid schedule",
			modify:     func(c *Config) { c.Watch.Schedule = "61 * * * *" },
			errorField: "watch.schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig().Build()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.errorField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.errorField, validationErr.Errors)
			}
		})
	}
}

func TestValidate_FailOnNone(t *testing.T) {
	cfg := newTestConfig().WithFailOn("none").Build()
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "lint.fail_on", Message: "bad"}
	if got, want := err.Error(), "lint.fail_on: bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
