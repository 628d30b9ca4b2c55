// Package config provides configuration management for sdclint.
//
// Configuration is read from a YAML file (.sdclint.yaml in the working
// directory, or the file given with --config) and may be overridden by
// environment variables. Command-line flags are applied last by the CLI.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig(".sdclint.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides(path)
//
// With an empty path, LoadConfigWithEnvOverrides falls back to the defaults
// when .sdclint.yaml does not exist.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SDCLINT_SECTION_FIELD.
// For example:
//
//   - SDCLINT_FAIL_ON overrides lint.fail_on
//   - SDCLINT_LOGGING_LEVEL overrides logging.level
//   - SDCLINT_WORKERS overrides workers
//   - SDCLINT_KNOWN_VARIABLES appends to lint.known_variables (comma separated)
//
// # Validation
//
// Validation collects every problem before failing:
//
//	configuration validation failed with 2 errors:
//	  - lint.fail_on: invalid severity "fatal": must be one of emergency, ... or 0-7, or 'none'
//	  - lint.disabled_rules[0]: unknown rule "filters" (valid: filter, ...)
//
// # Example Configuration
//
//	projects:
//	  - web/themes/custom/acme
//
//	lint:
//	  fail_on: error
//	  min_severity: notice
//	  known_variables: [site_name]
//	  disabled_rules: [conditional]
//	  policies:
//	    filter:
//	      allow: [markdown]
//	      forbid:
//	        raw: "Use a sanitised field instead."
//
//	output:
//	  format: table
//
//	metrics:
//	  enabled: true
//	  textfile: /var/lib/node_exporter/sdclint.prom
package config
