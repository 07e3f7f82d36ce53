package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceParentKey is the W3C Trace Context key of a serve request's "trace"
// object:
//
//	{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
//
// The response carries the context of the span that served the request under
// the same key.
const TraceParentKey = "traceparent"

// Propagator returns the global text map propagator.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// ExtractFromMap returns ctx with the remote span context held in carrier.
func ExtractFromMap(ctx context.Context, carrier map[string]string) context.Context {
	if len(carrier) == 0 {
		return ctx
	}
	return Propagator().Extract(ctx, propagation.MapCarrier(carrier))
}

// InjectToMap writes the span context of ctx into carrier.
func InjectToMap(ctx context.Context, carrier map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(carrier))
}

// ValidateTraceParent reports whether s is a well-formed traceparent with
// non-zero trace and parent IDs. Hex digits must be lowercase.
func ValidateTraceParent(s string) bool {
	version, rest, ok := strings.Cut(s, "-")
	if !ok || len(version) != 2 || version == "ff" || !isLowerHex(version) {
		return false
	}
	traceID, rest, ok := strings.Cut(rest, "-")
	if !ok {
		return false
	}
	parentID, flags, ok := strings.Cut(rest, "-")
	if !ok || len(flags) != 2 || !isLowerHex(flags) {
		return false
	}
	if _, err := trace.TraceIDFromHex(traceID); err != nil {
		return false
	}
	_, err := trace.SpanIDFromHex(parentID)
	return err == nil
}

func isLowerHex(s string) bool {
	return strings.Trim(s, "0123456789abcdef") == ""
}
