package project

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/validator"
	"mercator-hq/sdclint/pkg/telemetry"
	"mercator-hq/sdclint/pkg/telemetry/logging"
	"mercator-hq/sdclint/pkg/telemetry/tracing"
)

// Triggers recorded on runs.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Request selects what a run validates.
type Request struct {
	// Projects are the directories searched for definitions. The base name
	// of each directory is its provider.
	Projects []string

	// ComponentID restricts the run to one component, given as
	// "provider:name" or as a bare machine name.
	ComponentID string

	// Only restricts the run to the listed definition paths when non-nil.
	// Keys are absolute, cleaned paths.
	Only map[string]bool

	// Trigger names what started the run. Default: TriggerCLI.
	Trigger string
}

// Result holds the diagnostics of one component.
type Result struct {
	ID          string
	Project     string
	Path        string
	Diagnostics diagnostic.List
}

// Report is the outcome of a run, with results in discovery order.
type Report struct {
	RunID     string
	Trigger   string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// Diagnostics returns the diagnostics of all results, in result order.
func (r *Report) Diagnostics() diagnostic.List {
	var out diagnostic.List
	for _, res := range r.Results {
		out = append(out, res.Diagnostics...)
	}
	return out
}

// Failed reports whether any diagnostic is at or above threshold.
func (r *Report) Failed(threshold diagnostic.Severity) bool {
	for _, res := range r.Results {
		if res.Diagnostics.HasAtOrAbove(threshold) {
			return true
		}
	}
	return false
}

// Filter drops diagnostics less severe than threshold and keeps every
// result, so clean components still show up in the report.
func (r *Report) Filter(threshold diagnostic.Severity) *Report {
	out := *r
	out.Results = make([]Result, len(r.Results))
	for i, res := range r.Results {
		res.Diagnostics = res.Diagnostics.Filter(threshold)
		out.Results[i] = res
	}
	return &out
}

// Runner validates the components of one or more projects.
type Runner struct {
	validator *validator.Validator
	telemetry *telemetry.Telemetry
	workers   int

	// failOn decides the status recorded for a run.
	failOn    diagnostic.Severity
	hasFailOn bool

	progress ProgressFunc
}

// ProgressFunc is called after each validated component. It may be called
// from several goroutines at once.
type ProgressFunc func(done, total int)

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many components are validated in parallel.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTelemetry sets the logger, metrics and tracer of the runner.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(r *Runner) {
		if t != nil {
			r.telemetry = t
		}
	}
}

// WithFailOn sets the severity at which a run is recorded as failed.
func WithFailOn(sev diagnostic.Severity) Option {
	return func(r *Runner) {
		r.failOn = sev
		r.hasFailOn = true
	}
}

// WithProgress reports progress while a run validates components.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a runner around v.
func NewRunner(v *validator.Validator, opts ...Option) *Runner {
	r := &Runner{
		validator: v,
		telemetry: telemetry.Nop(),
		workers:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// job is one component to validate and the project it came from.
type job struct {
	project string
	def     *component.Definition
}

// Run discovers the requested components and validates them. A project
// without components is logged, not an error. An unknown ComponentID
// returns component.ErrNotFound.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Trigger == "" {
		req.Trigger = TriggerCLI
	}
	report := &Report{
		RunID:     uuid.NewString(),
		Trigger:   req.Trigger,
		StartedAt: time.Now(),
	}

	ctx = logging.WithRunID(tracing.FromEnvironment(ctx), report.RunID)
	ctx, span := r.telemetry.Tracer().Start(ctx, "lint.run")
	defer span.End()
	tracing.SetRunAttributes(span, report.RunID, req.Trigger, req.Projects)
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}

	jobs, err := r.collect(ctx, req)
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrComponents, len(jobs)))

	results, err := r.validate(ctx, jobs)
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}
	report.Results = results
	report.Duration = time.Since(report.StartedAt)

	failed := r.hasFailOn && report.Failed(r.failOn)
	r.telemetry.Metrics().RecordRun(req.Trigger, len(results), failed, report.Duration)
	tracing.SetResultAttributes(span, report.Diagnostics())

	r.telemetry.Logger().InfoContext(ctx, "Validation finished",
		"components", len(results),
		"diagnostics", len(report.Diagnostics()),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// collect discovers the definitions of every project and applies the
// request filters.
func (r *Runner) collect(ctx context.Context, req Request) ([]job, error) {
	logger := r.telemetry.Logger()

	var jobs []job
	matched := false
	for _, dir := range req.Projects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pctx := logging.WithProject(ctx, dir)
		provider := component.Provider(dir)
		logger.InfoContext(pctx, fmt.Sprintf("Start validation of %s...", provider))

		defs, err := component.Discover(dir, provider)
		if err != nil {
			return nil, err
		}
		if len(defs) == 0 {
			logger.WarnContext(pctx, fmt.Sprintf("No components found for %s, is it the right directory?", provider))
			continue
		}

		for _, def := range defs {
			if !matchID(def, req.ComponentID) {
				continue
			}
			matched = true
			if req.Only != nil && !req.Only[absPath(def.Path)] {
				continue
			}
			jobs = append(jobs, job{project: dir, def: def})
		}
	}

	if req.ComponentID != "" && !matched {
		return nil, fmt.Errorf("%w: %s", component.ErrNotFound, req.ComponentID)
	}
	return jobs, nil
}

// validate runs the jobs on the worker pool. Results keep the job order.
func (r *Runner) validate(ctx context.Context, jobs []job) ([]Result, error) {
	results := make([]Result, len(jobs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.validateOne(gctx, j)
			if r.progress != nil {
				r.progress(int(done.Add(1)), len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) validateOne(ctx context.Context, j job) Result {
	ctx = logging.WithComponent(ctx, j.def.ID)
	ctx, span := r.telemetry.Tracer().Start(ctx, "lint.component")
	defer span.End()
	tracing.SetComponentAttributes(span, j.def.ID, j.def.TemplatePath)

	start := time.Now()
	diags := r.validator.ValidateComponent(j.def.ID, j.def)
	elapsed := time.Since(start)

	r.telemetry.Metrics().RecordValidation("component", diags, elapsed)
	tracing.SetResultAttributes(span, diags)
	r.telemetry.Logger().DebugContext(ctx, "Component validated",
		"diagnostics", len(diags),
		"duration_ms", elapsed.Milliseconds(),
	)

	return Result{
		ID:          j.def.ID,
		Project:     j.project,
		Path:        j.def.Path,
		Diagnostics: diags,
	}
}

// matchID reports whether def is selected by id. An id without a provider
// matches the machine name in any project.
func matchID(def *component.Definition, id string) bool {
	switch {
	case id == "":
		return true
	case strings.Contains(id, ":"):
		return def.ID == id
	default:
		return def.Name == id
	}
}

// absPath returns the absolute form of path, or path cleaned when the
// working directory is unknown.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// AbsPaths builds an Only set from paths.
func AbsPaths(paths ...string) map[string]bool {
	only := make(map[string]bool, len(paths))
	for _, p := range paths {
		only[absPath(p)] = true
	}
	return only
}
