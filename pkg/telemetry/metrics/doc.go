// Package metrics provides Prometheus metrics for the MPL builtin runtime.
//
// # Metrics Categories
//
//   - Builtin Metrics: call count by outcome, duration, raised errors by kind,
//     schema failures returned as data, argument sizes
//   - Registry Metrics: reloads, registered builtins, enabled families
//   - Evidence Metrics: audit records written, dropped and pruned
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCall("base64.decode", "base64", "ok", 3*time.Microsecond)
//	collector.RecordError("hex.decode", "decode")
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Builtin names come from callers, so the collector accepts at most 256
// distinct names per process. Further names are aggregated into "other".
package metrics
