package metrics

import (
	"time"

	"mercator-hq/mpl-builtins/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BuiltinMetrics tracks builtin invocations.
//
// Metrics:
//   - mercator_mpl_builtin_calls_total: Call count by builtin, family, outcome
//   - mercator_mpl_builtin_call_duration_seconds: Call duration histogram
//   - mercator_mpl_builtin_errors_total: Raised errors by builtin and error kind
//   - mercator_mpl_builtin_soft_failures_total: Schema failures returned as data
//   - mercator_mpl_builtin_argument_bytes: Encoded argument size
type BuiltinMetrics struct {
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	softFailures  *prometheus.CounterVec
	argumentBytes *prometheus.HistogramVec
}

// NewBuiltinMetrics creates and registers builtin metrics with the provided registry.
func NewBuiltinMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BuiltinMetrics {
	bm := &BuiltinMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builtin_calls_total",
				Help:      "Total number of builtin calls",
			},
			[]string{"builtin", "family", "outcome"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builtin_call_duration_seconds",
				Help:      "Duration of builtin calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"builtin"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builtin_errors_total",
				Help:      "Total number of errors raised by builtins",
			},
			[]string{"builtin", "kind"},
		),

		softFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builtin_soft_failures_total",
				Help:      "Total number of schema failures returned as [false, message]",
			},
			[]string{"builtin"},
		),

		argumentBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "builtin_argument_bytes",
				Help:      "Size of encoded builtin arguments in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B to 1MB
			},
			[]string{"builtin"},
		),
	}

	registry.MustRegister(
		bm.callsTotal,
		bm.callDuration,
		bm.errorsTotal,
		bm.softFailures,
		bm.argumentBytes,
	)

	return bm
}

// RecordCall records a completed builtin call.
func (bm *BuiltinMetrics) RecordCall(builtin, family, outcome string, duration time.Duration) {
	bm.callsTotal.WithLabelValues(builtin, family, outcome).Inc()
	bm.callDuration.WithLabelValues(builtin).Observe(duration.Seconds())
}

// RecordError records an error raised by a builtin. kind is the error
// category ("arity", "type", "decode", ...).
func (bm *BuiltinMetrics) RecordError(builtin, kind string) {
	bm.errorsTotal.WithLabelValues(builtin, kind).Inc()
}

// RecordSoftFailure records a schema failure returned as data.
func (bm *BuiltinMetrics) RecordSoftFailure(builtin string) {
	bm.softFailures.WithLabelValues(builtin).Inc()
}

// RecordArgumentSize records the encoded size of a call's arguments.
func (bm *BuiltinMetrics) RecordArgumentSize(builtin string, sizeBytes int) {
	if sizeBytes > 0 {
		bm.argumentBytes.WithLabelValues(builtin).Observe(float64(sizeBytes))
	}
}
