package tracing

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Environment variables carrying a parent trace context. CI systems that
// trace their pipelines export them to every step, following the W3C Trace
// Context format:
//
//	TRACEPARENT=00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	TRACESTATE=congo=t61rcWkgMzE
const (
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
)

// FromEnvironment returns ctx carrying the parent trace context found in
// TRACEPARENT and TRACESTATE, so a lint run appears as a child of the
// pipeline step that started it. An absent or malformed TRACEPARENT, or a
// ctx that already carries a span, leaves ctx unchanged.
// The global propagator is not consulted, so runs with tracing disabled
// still log the parent trace ID.
func FromEnvironment(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	traceparent := os.Getenv(EnvTraceParent)
	if !ValidateTraceParent(traceparent) {
		return ctx
	}
	carrier := propagation.MapCarrier{"traceparent": traceparent}
	if state := os.Getenv(EnvTraceState); state != "" {
		carrier["tracestate"] = state
	}
	return propagation.TraceContext{}.Extract(ctx, carrier)
}

// ValidateTraceParent validates the traceparent format.
// Returns true if the value is valid according to W3C Trace Context.
//
// Format: version-trace_id-parent_id-trace_flags
//   - version: 2 hex digits (00)
//   - trace_id: 32 hex digits (128-bit)
//   - parent_id: 16 hex digits (64-bit)
//   - trace_flags: 2 hex digits (8-bit)
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}

	if len(parts[0]) != 2 || !isHexString(parts[0]) {
		return false
	}
	if len(parts[1]) != 32 || !isHexString(parts[1]) {
		return false
	}
	if len(parts[2]) != 16 || !isHexString(parts[2]) {
		return false
	}
	if len(parts[3]) != 2 || !isHexString(parts[3]) {
		return false
	}

	// All-zero ids are invalid
	if parts[1] == "00000000000000000000000000000000" || parts[2] == "0000000000000000" {
		return false
	}

	return true
}

// isHexString checks if a string contains only hexadecimal characters.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
