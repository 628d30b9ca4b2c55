package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/sdclint/pkg/cli"
	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/gitscope"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/validator"
	"mercator-hq/sdclint/pkg/project"
	"mercator-hq/sdclint/pkg/telemetry"
)

// stdinID names a template read from stdin when --component is not set.
const stdinID = "stdin"

type lintOptions struct {
	component          string
	format             string
	failOn             string
	minSeverity        string
	changedSince       string
	workers            int
	metricsFile        string
	progress           bool
	reportUnusedInputs bool
	knownVariables     []string
	disabledRules      []string
}

var lintFlags lintOptions

var lintCmd = &cobra.Command{
	Use:   "lint [project-dir...]",
	Short: "Lint the components of one or more projects",
	Long: `Lint discovers every *.component.yml below the project directories and
validates the definition and its template.

Project directories default to the projects of the configuration file, or
the current directory. "-" reads a single template from stdin instead; it
is linted with no declared inputs.

Output formats:
  - table: aligned columns (default)
  - text:  one diagnostic per line with a summary
  - json:  the full report
  - csv:   one row per diagnostic

The exit status is 1 when a diagnostic is at or above --fail-on.`,
	Example: `  # Lint the current directory
  sdclint lint

  # Lint one component and print JSON
  sdclint lint themes/olivero --component olivero:card --format json

  # Only components changed since a ref, warnings and worse
  sdclint lint --changed-since origin/main --min-severity warning

  # Lint a template from stdin
  cat card.twig | sdclint lint -`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.component, "component", "", "lint a single component (provider:name or name)")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "", "output format: table, text, json or csv")
	lintCmd.Flags().StringVar(&lintFlags.failOn, "fail-on", "", "lowest severity that fails the run, or none")
	lintCmd.Flags().StringVar(&lintFlags.minSeverity, "min-severity", "", "lowest severity to report")
	lintCmd.Flags().StringVar(&lintFlags.changedSince, "changed-since", "", "only lint components changed since this git revision")
	lintCmd.Flags().IntVarP(&lintFlags.workers, "workers", "w", 0, "number of components validated in parallel")
	lintCmd.Flags().StringVar(&lintFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	lintCmd.Flags().BoolVar(&lintFlags.progress, "progress", false, "show a progress bar on stderr")
	lintCmd.Flags().BoolVar(&lintFlags.reportUnusedInputs, "report-unused-inputs", false, "report props and slots the template never uses")
	lintCmd.Flags().StringSliceVar(&lintFlags.knownVariables, "known-variable", nil, "variable provided by the environment (repeatable)")
	lintCmd.Flags().StringSliceVar(&lintFlags.disabledRules, "disable-rule", nil, "rule to turn off (repeatable)")
}

// applyLintFlags overrides cfg with the flags that were set.
func applyLintFlags(cfg *config.Config) {
	if lintFlags.format != "" {
		cfg.Output.Format = lintFlags.format
	}
	if lintFlags.failOn != "" {
		cfg.Lint.FailOn = lintFlags.failOn
	}
	if lintFlags.minSeverity != "" {
		cfg.Lint.MinSeverity = lintFlags.minSeverity
	}
	if lintFlags.workers > 0 {
		cfg.Workers = lintFlags.workers
	}
	if lintFlags.metricsFile != "" {
		cfg.Metrics.Textfile = lintFlags.metricsFile
	}
	if lintFlags.progress {
		cfg.Output.Progress = true
	}
	if lintFlags.reportUnusedInputs {
		cfg.Lint.ReportUnusedInputs = true
	}
	cfg.Lint.KnownVariables = append(cfg.Lint.KnownVariables, lintFlags.knownVariables...)
	cfg.Lint.DisabledRules = append(cfg.Lint.DisabledRules, lintFlags.disabledRules...)

	if cfg.Metrics.Textfile != "" {
		cfg.Metrics.Enabled = true
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewUsageError("lint", err, "check the configuration file given with --config")
	}
	applyLintFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		return cli.NewUsageError("lint", err, "check the lint flags")
	}

	format, err := cli.ParseFormat(cfg.Output.Format)
	if err != nil {
		return cli.NewUsageError("lint", err, "")
	}
	failOn, hasFailOn, err := cfg.Lint.FailOnSeverity()
	if err != nil {
		return cli.NewUsageError("lint", err, "")
	}
	minSeverity, err := cfg.Lint.MinSeverityLevel()
	if err != nil {
		return cli.NewUsageError("lint", err, "")
	}

	tel, err := telemetry.New(cfg, Version, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewUsageError("lint", err, "check the logging and tracing settings")
	}
	defer shutdownTelemetry(tel)

	v, err := project.NewValidator(&cfg.Lint, tel)
	if err != nil {
		return cli.NewUsageError("lint", err, "check the lint.policies and lint.disabled_rules settings")
	}

	var report *project.Report
	if len(args) == 1 && args[0] == "-" {
		report, err = lintStdin(cmd.InOrStdin(), v, tel)
	} else {
		opts := []project.Option{project.WithWorkers(cfg.Workers), project.WithTelemetry(tel)}
		if hasFailOn {
			opts = append(opts, project.WithFailOn(failOn))
		}
		report, err = lintProjects(cmd, cfg, args, v, opts, tel)
	}
	if err != nil {
		return err
	}

	view := cli.NewReportView(report.Filter(minSeverity))
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), view); err != nil {
		return cli.NewCommandError("lint", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := tel.Metrics().WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return cli.NewCommandError("lint", err)
		}
	}

	if hasFailOn && report.Failed(failOn) {
		return cli.ErrLintFailed
	}
	return nil
}

// lintProjects runs the project runner over args, or the configured
// projects when args is empty.
func lintProjects(cmd *cobra.Command, cfg *config.Config, args []string, v *validator.Validator, opts []project.Option, tel *telemetry.Telemetry) (*project.Report, error) {
	ctx := commandContext(cmd)
	projects := cfg.Projects
	if len(args) > 0 {
		projects = args
	}

	req := project.Request{
		Projects:    projects,
		ComponentID: lintFlags.component,
	}
	if lintFlags.changedSince != "" {
		req.Only = make(map[string]bool)
		for _, dir := range projects {
			changed, err := gitscope.Changed(ctx, dir, lintFlags.changedSince)
			if err != nil {
				return nil, cli.NewUsageError("lint", err, "--changed-since needs a git repository and a valid revision")
			}
			maps.Copy(req.Only, changed)
		}
		tel.Logger().Debug("Changed components", "revision", lintFlags.changedSince, "count", len(req.Only))
	}

	var progress cli.ProgressReporter
	if cfg.Output.Progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		var once sync.Once
		opts = append(opts, project.WithProgress(func(done, total int) {
			once.Do(func() { progress.Start(int64(total)) })
			progress.Update(int64(done))
		}))
	}

	report, err := project.NewRunner(v, opts...).Run(ctx, req)
	if progress != nil {
		if err != nil {
			progress.Error(err)
		} else if len(report.Results) > 0 {
			progress.Finish()
		}
	}
	switch {
	case errors.Is(err, component.ErrNotFound):
		return nil, cli.NewUsageError("lint", err, "use provider:name or the bare component name")
	case err != nil:
		return nil, cli.NewCommandError("lint", err)
	}
	return report, nil
}

// lintStdin validates a single template read from r.
func lintStdin(r io.Reader, v *validator.Validator, tel *telemetry.Telemetry) (*project.Report, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, cli.NewCommandError("lint", fmt.Errorf("read stdin: %w", err))
	}

	id := lintFlags.component
	if id == "" {
		id = stdinID
	}

	start := time.Now()
	var diags diagnostic.List
	for _, d := range v.ValidateSource(string(source)) {
		diags = append(diags, d.WithID(id))
	}
	duration := time.Since(start)
	tel.Metrics().RecordValidation("source", diags, duration)

	return &project.Report{
		RunID:     uuid.NewString(),
		Trigger:   project.TriggerCLI,
		StartedAt: start,
		Duration:  duration,
		Results:   []project.Result{{ID: id, Diagnostics: diags}},
	}, nil
}
