package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanNameBuiltin prefixes the span of every builtin call.
const SpanNameBuiltin = "mpl.builtin"

// SpanNameServeRequest is the span of one serve request, parent of the
// builtin span.
const SpanNameServeRequest = "mpl.serve.request"

// Attribute keys use the "mpl.*" namespace.
const (
	AttrBuiltinName   = "mpl.builtin.name"
	AttrBuiltinFamily = "mpl.builtin.family"
	AttrArgCount      = "mpl.builtin.arg_count"
	AttrStrict        = "mpl.builtin.strict"
	AttrOutcome       = "mpl.builtin.outcome"
	AttrRequestID     = "mpl.request_id"
	AttrSource        = "mpl.source"
	AttrLine          = "mpl.source.line"
	AttrColumn        = "mpl.source.column"

	AttrErrorType    = "mpl.error.type"
	AttrErrorMessage = "error.message"
)

// SetBuiltinAttributes sets the attributes describing a builtin call.
func SetBuiltinAttributes(span trace.Span, name, family string, argc int, strict bool) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrBuiltinName, name),
		attribute.Int(AttrArgCount, argc),
		attribute.Bool(AttrStrict, strict),
	}
	// Unknown names have no family
	if family != "" {
		attrs = append(attrs, attribute.String(AttrBuiltinFamily, family))
	}
	span.SetAttributes(attrs...)
}

// SetSourceAttributes records where in a policy the call was made.
func SetSourceAttributes(span trace.Span, file string, line, column int) {
	if file == "" {
		return
	}
	span.SetAttributes(
		attribute.String(AttrSource, file),
		attribute.Int(AttrLine, line),
		attribute.Int(AttrColumn, column),
	)
}

// SetRequestAttributes sets the serve request ID on a span.
func SetRequestAttributes(span trace.Span, requestID string) {
	if requestID == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrRequestID, requestID))
}

// SetOutcome records the call outcome. Soft failures are data, so the span
// status stays OK for them.
func SetOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "decode")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
