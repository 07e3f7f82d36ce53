package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// BuiltinKey is the context key for the builtin being called.
	BuiltinKey contextKey = "builtin"

	// PolicyKey is the context key for the policy file the call came from.
	PolicyKey contextKey = "policy"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithBuiltin adds a builtin name to the context.
func WithBuiltin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, BuiltinKey, name)
}

// GetBuiltin retrieves the builtin name from the context.
func GetBuiltin(ctx context.Context) string {
	if name, ok := ctx.Value(BuiltinKey).(string); ok {
		return name
	}
	return ""
}

// WithPolicy adds a policy file name to the context.
func WithPolicy(ctx context.Context, policy string) context.Context {
	return context.WithValue(ctx, PolicyKey, policy)
}

// GetPolicy retrieves the policy file name from the context.
func GetPolicy(ctx context.Context) string {
	if policy, ok := ctx.Value(PolicyKey).(string); ok {
		return policy
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

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if name := GetBuiltin(ctx); name != "" {
		fields = append(fields, "builtin", name)
	}
	if policy := GetPolicy(ctx); policy != "" {
		fields = append(fields, "policy", policy)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}
