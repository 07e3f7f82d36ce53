// Package telemetry groups the observability stack of the builtin runtime.
//
//   - logging: slog-based structured logging with secret redaction
//   - metrics: Prometheus metrics for builtin calls, registry reloads and the
//     audit log
//   - tracing: OpenTelemetry spans per builtin call
//   - health: liveness and readiness endpoints for the serve command
//
// The dispatcher in pkg/policy/engine is the single place that feeds all of
// them.
package telemetry
