package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Unknown keys are rejected so that typos in rule settings do not go unnoticed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration without applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SDCLINT_SECTION_FIELD (e.g., SDCLINT_LOGGING_LEVEL).
// Environment variables always take precedence over file-based configuration.
//
// An empty path uses DefaultConfigFile when it exists and the defaults
// otherwise.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch {
	case path != "":
		cfg, err = LoadConfig(path)
	default:
		cfg, err = LoadConfig(DefaultConfigFile)
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err = Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format SDCLINT_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SDCLINT_PROJECTS"); val != "" {
		cfg.Projects = splitList(val)
	}
	if val := os.Getenv("SDCLINT_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Workers = i
		}
	}

	// Lint overrides
	if val := os.Getenv("SDCLINT_FAIL_ON"); val != "" {
		cfg.Lint.FailOn = val
	}
	if val := os.Getenv("SDCLINT_MIN_SEVERITY"); val != "" {
		cfg.Lint.MinSeverity = val
	}
	if val := os.Getenv("SDCLINT_REPORT_UNUSED_INPUTS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Lint.ReportUnusedInputs = b
		}
	}
	if val := os.Getenv("SDCLINT_KNOWN_VARIABLES"); val != "" {
		cfg.Lint.KnownVariables = append(cfg.Lint.KnownVariables, splitList(val)...)
	}
	if val := os.Getenv("SDCLINT_DISABLED_RULES"); val != "" {
		cfg.Lint.DisabledRules = append(cfg.Lint.DisabledRules, splitList(val)...)
	}

	// Output overrides
	if val := os.Getenv("SDCLINT_OUTPUT_FORMAT"); val != "" {
		cfg.Output.Format = val
	}

	// Logging overrides
	if val := os.Getenv("SDCLINT_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SDCLINT_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("SDCLINT_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SDCLINT_METRICS_TEXTFILE"); val != "" {
		cfg.Metrics.Textfile = val
	}
	if val := os.Getenv("SDCLINT_METRICS_ADDRESS"); val != "" {
		cfg.Metrics.Address = val
	}

	// Tracing overrides
	if val := os.Getenv("SDCLINT_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("SDCLINT_TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := os.Getenv("SDCLINT_TRACING_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Insecure = b
		}
	}
	if val := os.Getenv("SDCLINT_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}

	// Watch overrides
	if val := os.Getenv("SDCLINT_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("SDCLINT_WATCH_SCHEDULE"); val != "" {
		cfg.Watch.Schedule = val
	}
}

// splitList splits a comma separated environment value.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
