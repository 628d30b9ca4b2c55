package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

// Attribute keys used on sdclint spans.
const (
	AttrRunID       = "sdclint.run_id"
	AttrProject     = "sdclint.project"
	AttrComponent   = "sdclint.component"
	AttrTemplate    = "sdclint.template"
	AttrComponents  = "sdclint.components"
	AttrDiagnostics = "sdclint.diagnostics"
	AttrMaxSeverity = "sdclint.max_severity"
	AttrTrigger     = "sdclint.trigger"
)

// SetRunAttributes sets batch run attributes on a span.
func SetRunAttributes(span trace.Span, runID, trigger string, projects []string) {
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.String(AttrTrigger, trigger),
		attribute.StringSlice(AttrProject, projects),
	)
}

// SetComponentAttributes sets the component under validation on a span.
func SetComponentAttributes(span trace.Span, id, templatePath string) {
	attrs := []attribute.KeyValue{attribute.String(AttrComponent, id)}
	if templatePath != "" {
		attrs = append(attrs, attribute.String(AttrTemplate, templatePath))
	}
	span.SetAttributes(attrs...)
}

// SetResultAttributes records the diagnostic count and the most severe
// diagnostic of a validation.
func SetResultAttributes(span trace.Span, diags diagnostic.List) {
	attrs := []attribute.KeyValue{attribute.Int(AttrDiagnostics, len(diags))}
	if len(diags) > 0 {
		worst := diags[0].Severity
		for _, d := range diags[1:] {
			if d.Severity.AtLeast(worst) {
				worst = d.Severity
			}
		}
		attrs = append(attrs, attribute.String(AttrMaxSeverity, worst.String()))
	}
	span.SetAttributes(attrs...)
}

// AddEvent adds an event to a span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
