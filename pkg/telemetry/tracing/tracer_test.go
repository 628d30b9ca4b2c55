package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/sdclint/pkg/config"
	"mercator-hq/sdclint/pkg/lint/diagnostic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordingTracer returns a tracer backed by an in-memory span recorder.
func recordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Tracer{
		config:   &config.TracingConfig{Enabled: true},
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
	}, recorder
}

func attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		enabled bool
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false, ServiceName: "test-service"},
		},
		{
			name: "enabled with always sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "always",
				Endpoint:    "localhost:4317",
				Insecure:    true,
				Timeout:     time.Second,
				ServiceName: "test-service",
			},
			enabled: true,
		},
		{
			name: "invalid sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.enabled)
			}
		})
	}
}

func TestTracer_Noop(t *testing.T) {
	tests := []struct {
		name   string
		tracer *Tracer
	}{
		{"noop", Noop()},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, span := tt.tracer.Start(context.Background(), "lint.run")
			defer span.End()

			if span.SpanContext().IsValid() {
				t.Error("noop span has a valid span context")
			}
			if TraceID(ctx) != "" {
				t.Errorf("TraceID() = %q, want empty", TraceID(ctx))
			}
			if tt.tracer.Enabled() {
				t.Error("Enabled() = true")
			}
			if err := tt.tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestTracer_Start(t *testing.T) {
	tracer, recorder := recordingTracer()

	ctx, run := tracer.Start(context.Background(), "lint.run")
	_, component := tracer.Start(ctx, "lint.component")
	component.End()
	run.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	child, parent := spans[0], spans[1]
	if child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("component span is not a child of the run span")
	}
	if TraceID(ctx) != parent.SpanContext().TraceID().String() {
		t.Errorf("TraceID() = %q, want %q", TraceID(ctx), parent.SpanContext().TraceID())
	}
	if !SpanFromContext(ctx).SpanContext().Equal(SpanContext(ctx)) {
		t.Error("SpanFromContext() and SpanContext() disagree")
	}
}

func TestSetAttributes(t *testing.T) {
	tracer, recorder := recordingTracer()

	_, span := tracer.Start(context.Background(), "lint.component")
	SetRunAttributes(span, "run-1", "cli", []string{"themes/acme"})
	SetComponentAttributes(span, "acme:card", "card.twig")
	SetResultAttributes(span, diagnostic.List{
		diagnostic.New("acme:card", 1, diagnostic.Warning, "w"),
		diagnostic.New("acme:card", 2, diagnostic.Error, "e"),
		diagnostic.New("acme:card", 3, diagnostic.Notice, "n"),
	})
	AddEvent(span, "schema.checked", attribute.Int("count", 0))
	span.End()

	got := attributes(recorder.Ended()[0])
	if got[AttrRunID].AsString() != "run-1" {
		t.Errorf("%s = %v", AttrRunID, got[AttrRunID])
	}
	if got[AttrComponent].AsString() != "acme:card" {
		t.Errorf("%s = %v", AttrComponent, got[AttrComponent])
	}
	if got[AttrTemplate].AsString() != "card.twig" {
		t.Errorf("%s = %v", AttrTemplate, got[AttrTemplate])
	}
	if got[AttrDiagnostics].AsInt64() != 3 {
		t.Errorf("%s = %v, want 3", AttrDiagnostics, got[AttrDiagnostics])
	}
	if got[AttrMaxSeverity].AsString() != "ERROR" {
		t.Errorf("%s = %v, want ERROR", AttrMaxSeverity, got[AttrMaxSeverity])
	}
	if events := recorder.Ended()[0].Events(); len(events) != 1 || events[0].Name != "schema.checked" {
		t.Errorf("events = %v", events)
	}
}

func TestSetResultAttributes_Clean(t *testing.T) {
	tracer, recorder := recordingTracer()

	_, span := tracer.Start(context.Background(), "lint.component")
	SetResultAttributes(span, nil)
	span.End()

	got := attributes(recorder.Ended()[0])
	if _, ok := got[AttrMaxSeverity]; ok {
		t.Errorf("%s set for a clean result", AttrMaxSeverity)
	}
}

func TestSetError(t *testing.T) {
	tracer, recorder := recordingTracer()

	_, span := tracer.Start(context.Background(), "lint.run")
	SetError(span, nil)
	SetError(span, errors.New("discover failed"))
	span.End()

	ended := recorder.Ended()[0]
	if !attributes(ended)["error"].AsBool() {
		t.Error("error attribute not set")
	}
	if len(ended.Events()) != 1 {
		t.Errorf("events = %d, want 1 recorded error", len(ended.Events()))
	}
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"ok", nil, codes.Ok},
		{"error", errors.New("boom"), codes.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, recorder := recordingTracer()
			_, span := tracer.Start(context.Background(), "lint.run")
			SetStatus(span, tt.err)
			span.End()

			if got := recorder.Ended()[0].Status().Code; got != tt.want {
				t.Errorf("Status().Code = %v, want %v", got, tt.want)
			}
		})
	}
}
