package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/telemetry"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "sdclint",
	Short: "sdclint - static analysis for single-directory component templates",
	Long: `sdclint validates the Twig templates and component definitions of
single-directory components without rendering them.

It reports:
  - Variables used in a template but never declared as props or slots
  - Forbidden, deprecated and unknown filters, functions and tests
  - Statements and constructs that do not belong in components
  - Definition mistakes such as required props or untyped properties

Diagnostics carry a syslog severity; the exit status reflects --fail-on.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default "+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console, text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}

// loadConfig reads the configuration with environment overrides, then
// applies the global flags. The caller validates the result once its own
// flags are applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// commandContext returns the context of cmd, or a background context when
// the command is invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// shutdownTelemetry flushes pending spans.
func shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		tel.Logger().Warn("Failed to shut down telemetry", "error", err)
	}
}
