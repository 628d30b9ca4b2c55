package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for the id of a lint run.
	RunIDKey contextKey = "run_id"

	// ProjectKey is the context key for the project directory.
	ProjectKey contextKey = "project"

	// ComponentKey is the context key for component ids.
	ComponentKey contextKey = "component"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithProject adds a project directory to the context.
func WithProject(ctx context.Context, project string) context.Context {
	return context.WithValue(ctx, ProjectKey, project)
}

// GetProject retrieves the project directory from the context.
func GetProject(ctx context.Context) string {
	if project, ok := ctx.Value(ProjectKey).(string); ok {
		return project
	}
	return ""
}

// WithComponent adds a component id to the context.
func WithComponent(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ComponentKey, id)
}

// GetComponent retrieves the component id from the context.
func GetComponent(ctx context.Context) string {
	if id, ok := ctx.Value(ComponentKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if project := GetProject(ctx); project != "" {
		fields = append(fields, "project", project)
	}
	if id := GetComponent(ctx); id != "" {
		fields = append(fields, "component", id)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	return fields
}
