// Package tracing provides OpenTelemetry tracing for sdclint.
//
// A batch run produces one "lint.run" span with a child "lint.component"
// span per validated component. Spans are exported over OTLP gRPC.
//
// # Trace Context
//
// When TRACEPARENT is set in the environment (as CI systems that trace
// their pipelines do), the run span becomes a child of that context:
//
//	ctx := tracing.FromEnvironment(context.Background())
//
// # Sampling Strategies
//
//   - always: sample every run (default)
//   - never: sample nothing
//   - ratio: sample a fraction of root traces
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "lint.component")
//	tracing.SetComponentAttributes(span, def.ID, def.TemplatePath)
//	defer span.End()
package tracing
