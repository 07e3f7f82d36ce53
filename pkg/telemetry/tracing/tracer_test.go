package tracing

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/mpl-builtins/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Sampler:     SamplerAlways,
		ServiceName: "test-service",
	}, WithExporter(exporter), WithServiceVersion("1.2.3"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = tracer.Shutdown(context.Background())
	})
	return tracer, exporter
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:   "disabled tracing",
			config: &config.TracingConfig{Enabled: false},
		},
		{
			name:    "enabled without endpoint",
			config:  &config.TracingConfig{Enabled: true, Sampler: SamplerAlways},
			wantErr: true,
		},
		{
			name:    "invalid sampler",
			config:  &config.TracingConfig{Enabled: true, Sampler: "sometimes", Endpoint: "localhost:4317"},
			wantErr: true,
		},
		{
			name: "enabled with otlp endpoint",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "test-service",
				OTLP:        config.OTLPConfig{Insecure: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				_ = tracer.Shutdown(context.Background())
			}
		})
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.StartBuiltin(context.Background(), "hex.encode", "hex", 1, false)
	defer span.End()
	if TraceID(ctx) != "" {
		t.Error("noop span should not carry a trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_StartBuiltin(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	ctx, span := tracer.StartBuiltin(context.Background(), "json.unmarshal", "json", 1, true)
	SetSourceAttributes(span, "policy.mpl", 3, 7)
	SetOutcome(span, "ok")
	SetStatus(span, nil)

	if TraceID(ctx) == "" || SpanID(ctx) == "" {
		t.Error("expected valid trace and span IDs")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != "mpl.builtin json.unmarshal" {
		t.Errorf("span name = %q", got.Name)
	}
	attrs := attrMap(got.Attributes)
	if attrs[AttrBuiltinName].AsString() != "json.unmarshal" {
		t.Errorf("%s = %v", AttrBuiltinName, attrs[AttrBuiltinName])
	}
	if attrs[AttrBuiltinFamily].AsString() != "json" {
		t.Errorf("%s = %v", AttrBuiltinFamily, attrs[AttrBuiltinFamily])
	}
	if attrs[AttrArgCount].AsInt64() != 1 {
		t.Errorf("%s = %v", AttrArgCount, attrs[AttrArgCount])
	}
	if !attrs[AttrStrict].AsBool() {
		t.Errorf("%s = %v", AttrStrict, attrs[AttrStrict])
	}
	if attrs[AttrLine].AsInt64() != 3 || attrs[AttrColumn].AsInt64() != 7 {
		t.Errorf("source position = %v:%v", attrs[AttrLine], attrs[AttrColumn])
	}
	if got.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status.Code)
	}
}

func TestTracer_UnknownBuiltinHasNoFamily(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, span := tracer.StartBuiltin(context.Background(), "nope.decode", "", 0, false)
	span.End()

	attrs := attrMap(exporter.GetSpans()[0].Attributes)
	if _, ok := attrs[AttrBuiltinFamily]; ok {
		t.Error("unknown builtin should not carry a family attribute")
	}
}

func TestSetErrorAttributes(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, span := tracer.StartBuiltin(context.Background(), "hex.decode", "hex", 1, false)
	SetErrorAttributes(span, errors.New("`hex.decode` expects valid hex input"), "decode")
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	attrs := attrMap(got.Attributes)
	if attrs[AttrErrorType].AsString() != "decode" {
		t.Errorf("%s = %v", AttrErrorType, attrs[AttrErrorType])
	}
	if len(got.Events) != 1 || got.Events[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", got.Events)
	}
}

func TestSetErrorAttributes_NilError(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	_, span := tracer.Start(context.Background(), "noop")
	SetErrorAttributes(span, nil, "decode")
	SetError(span, nil)
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Unset {
		t.Errorf("status = %v, want Unset", got.Status.Code)
	}
}

func TestPropagation_RoundTrip(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	parent := map[string]string{
		"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}
	ctx := ExtractFromMap(context.Background(), parent)
	ctx, span := tracer.StartBuiltin(ctx, "yaml.marshal", "yaml", 1, false)

	out := map[string]string{}
	InjectToMap(ctx, out)
	span.End()

	if !ValidateTraceParent(out["traceparent"]) {
		t.Fatalf("injected traceparent %q is invalid", out["traceparent"])
	}
	got := exporter.GetSpans()[0]
	if got.SpanContext.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID = %s, want parent's", got.SpanContext.TraceID())
	}
	if got.Parent.SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span ID = %s", got.Parent.SpanID())
	}
}

func TestExtractFromMap_Empty(t *testing.T) {
	ctx := context.Background()
	if ExtractFromMap(ctx, nil) != ctx {
		t.Error("empty carrier should return the original context")
	}
}

func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", true},
		{"unsampled", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00", true},
		{"uppercase hex", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00F067AA0BA902B7-00", false},
		{"invalid version", "ff-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", false},
		{"trailing field", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01-x", false},
		{"empty", "", false},
		{"too few parts", "00-4bf92f3577b34da6a3ce929d0e0e4736-01", false},
		{"short trace id", "00-4bf92f35-00f067aa0ba902b7-01", false},
		{"non hex", "00-4bf92f3577b34da6a3ce929d0e0e473z-00f067aa0ba902b7-01", false},
		{"zero trace id", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", false},
		{"zero parent id", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.input); got != tt.want {
				t.Errorf("ValidateTraceParent(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
