package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/telemetry/logging"
	"mercator-hq/sdclint/pkg/telemetry/metrics"
	"mercator-hq/sdclint/pkg/telemetry/tracing"
)

// Telemetry holds the logger, metrics collector and tracer built from one
// configuration.
type Telemetry struct {
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// New builds the telemetry described by cfg. Logs go to logWriter.
func New(cfg *config.Config, version string, logWriter io.Writer) (*Telemetry, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Writer:    logWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("create tracer: %w", err)
	}

	return &Telemetry{
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
	}, nil
}

// Nop returns telemetry that records nothing.
func Nop() *Telemetry {
	return &Telemetry{
		logger:  logging.Discard(),
		metrics: metrics.NewCollector(&config.MetricsConfig{}, nil),
		tracer:  tracing.Noop(),
	}
}

// Logger returns the process logger.
func (t *Telemetry) Logger() *logging.Logger { return t.logger }

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}
	return errors.Join(errs...)
}
