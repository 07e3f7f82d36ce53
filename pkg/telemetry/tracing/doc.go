// Package tracing provides OpenTelemetry tracing for builtin calls.
//
// Every call dispatched through the engine gets one internal span named
// "mpl.builtin <name>" carrying the builtin name, family, argument count,
// strict flag and outcome. Raised errors mark the span as failed; schema
// failures returned as data do not.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: localhost:4317
//	    service_name: mpl-builtins
//	    otlp:
//	      insecure: true
//
// Spans are exported over OTLP/gRPC. When tracing is disabled a noop tracer
// is used.
//
// # Propagation
//
// In serve mode a request may carry a W3C traceparent. ExtractFromMap turns
// it into the parent context and InjectToMap writes the builtin span's
// context back into the response.
package tracing
