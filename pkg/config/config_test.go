package config

import (
	"testing"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

// configBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type configBuilder struct {
	cfg Config
}

func newTestConfig() *configBuilder {
	b := &configBuilder{}
	ApplyDefaults(&b.cfg)
	b.cfg.Workers = 2
	return b
}

func (b *configBuilder) Build() *Config {
	return &b.cfg
}

func (b *configBuilder) WithFailOn(level string) *configBuilder {
	b.cfg.Lint.FailOn = level
	return b
}

func (b *configBuilder) WithProjects(dirs ...string) *configBuilder {
	b.cfg.Projects = dirs
	return b
}

func (b *configBuilder) WithTracing(endpoint string) *configBuilder {
	b.cfg.Tracing.Enabled = true
	b.cfg.Tracing.Endpoint = endpoint
	return b
}

func TestConfigBuilder_Valid(t *testing.T) {
	cfg := newTestConfig().
		WithFailOn("warning").
		WithProjects("themes/a", "themes/b").
		WithTracing("localhost:4317").
		Build()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(cfg.Projects) != 2 {
		t.Errorf("Projects = %v, want 2 entries", cfg.Projects)
	}
}

func TestLintConfig_FailOnSeverity(t *testing.T) {
	tests := []struct {
		failOn  string
		want    diagnostic.Severity
		wantOK  bool
		wantErr bool
	}{
		{"error", diagnostic.Error, true, false},
		{"WARNING", diagnostic.Warning, true, false},
		{"3", diagnostic.Error, true, false},
		{"none", 0, false, false},
		{"fatal", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			cfg := LintConfig{FailOn: tt.failOn}
			got, ok, err := cfg.FailOnSeverity()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FailOnSeverity() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("FailOnSeverity() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLintConfig_MinSeverityLevel(t *testing.T) {
	cfg := LintConfig{MinSeverity: "notice"}
	got, err := cfg.MinSeverityLevel()
	if err != nil {
		t.Fatalf("MinSeverityLevel() error = %v", err)
	}
	if got != diagnostic.Notice {
		t.Errorf("MinSeverityLevel() = %v, want %v", got, diagnostic.Notice)
	}
}
