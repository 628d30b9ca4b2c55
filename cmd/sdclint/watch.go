package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/sdclint/pkg/cli"
	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/project"
	"mercator-hq/sdclint/pkg/telemetry"
	"mercator-hq/sdclint/pkg/telemetry/health"
	"mercator-hq/sdclint/pkg/watch"
)

type watchOptions struct {
	debounce    time.Duration
	schedule    string
	metricsAddr string
	format      string
}

var watchFlags watchOptions

var watchCmd = &cobra.Command{
	Use:   "watch [project-dir...]",
	Short: "Re-validate components whenever their files change",
	Long: `Watch validates every component once, then re-validates the components
whose template or definition changes. Bursts of changes are collapsed into
one run after the debounce period.

With --schedule, a full validation also runs on a cron schedule, for
example "@every 1h" or "0 6 * * *".

With --metrics-addr, an HTTP server exposes Prometheus metrics, /health,
/ready (ready once a first run has finished) and /version.

Stop with Ctrl+C.`,
	Example: `  # Watch the current directory
  sdclint watch

  # Watch a theme, re-validate everything hourly and serve metrics
  sdclint watch themes/olivero --schedule "@every 1h" --metrics-addr :9090`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "quiet period after the last change before a run (default 300ms)")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron schedule for full validations")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "address of the metrics and health server, e.g. :9090")
	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "", "output format: table, text, json or csv")
}

func applyWatchFlags(cfg *config.Config) {
	if watchFlags.debounce > 0 {
		cfg.Watch.Debounce = watchFlags.debounce
	}
	if watchFlags.schedule != "" {
		cfg.Watch.Schedule = watchFlags.schedule
	}
	if watchFlags.metricsAddr != "" {
		cfg.Metrics.Address = watchFlags.metricsAddr
	}
	if watchFlags.format != "" {
		cfg.Output.Format = watchFlags.format
	}
	if cfg.Metrics.Address != "" {
		cfg.Metrics.Enabled = true
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewUsageError("watch", err, "check the configuration file given with --config")
	}
	applyWatchFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		return cli.NewUsageError("watch", err, "check the watch flags")
	}

	format, err := cli.ParseFormat(cfg.Output.Format)
	if err != nil {
		return cli.NewUsageError("watch", err, "")
	}
	minSeverity, err := cfg.Lint.MinSeverityLevel()
	if err != nil {
		return cli.NewUsageError("watch", err, "")
	}

	tel, err := telemetry.New(cfg, Version, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewUsageError("watch", err, "check the logging and tracing settings")
	}
	defer shutdownTelemetry(tel)

	v, err := project.NewValidator(&cfg.Lint, tel)
	if err != nil {
		return cli.NewUsageError("watch", err, "check the lint.policies and lint.disabled_rules settings")
	}

	opts := []project.Option{project.WithWorkers(cfg.Workers), project.WithTelemetry(tel)}
	if failOn, ok, _ := cfg.Lint.FailOnSeverity(); ok {
		opts = append(opts, project.WithFailOn(failOn))
	}
	runner := project.NewRunner(v, opts...)

	projects := cfg.Projects
	if len(args) > 0 {
		projects = args
	}

	formatter := cli.NewFormatter(format)
	out := cmd.OutOrStdout()
	run := func(ctx context.Context, trigger string, only map[string]bool) error {
		report, err := runner.Run(ctx, project.Request{
			Projects: projects,
			Only:     only,
			Trigger:  trigger,
		})
		if err != nil {
			return err
		}
		return formatter.FormatTo(out, cli.NewReportView(report.Filter(minSeverity)))
	}

	w, err := watch.New(watch.Config{
		Paths:    projects,
		Debounce: cfg.Watch.Debounce,
		Schedule: cfg.Watch.Schedule,
	}, run, tel.Logger().Slog())
	if err != nil {
		return cli.NewUsageError("watch", err, "")
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	if cfg.Metrics.Address != "" {
		srv, err := serveMetrics(cfg, tel, w)
		if err != nil {
			return cli.NewUsageError("watch", err, "choose another --metrics-addr")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				tel.Logger().Error("Metrics server shutdown failed", "error", err)
			}
		}()
	}

	if err := w.Watch(ctx); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// serveMetrics starts the metrics and health server in the background.
// The listener is opened before returning so address errors surface at once.
func serveMetrics(cfg *config.Config, tel *telemetry.Telemetry, w *watch.Watcher) (*http.Server, error) {
	checker := health.New(0)
	checker.RegisterCheck("first_run", func(context.Context) error {
		if !w.HasRun() {
			return errors.New("no run completed yet")
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, tel.Metrics().Handler())
	health.Register(mux, checker, health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	})

	ln, err := net.Listen("tcp", cfg.Metrics.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Metrics.Address, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		tel.Logger().Info("Serving metrics", "address", ln.Addr().String(), "path", cfg.Metrics.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tel.Logger().Error("Metrics server failed", "error", err)
		}
	}()
	return srv, nil
}
