package metrics

import (
	"mercator-hq/mpl-builtins/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvidenceMetrics tracks the builtin call audit log.
//
// Metrics:
//   - mercator_mpl_evidence_records_total: Records by write result
//   - mercator_mpl_evidence_dropped_total: Records dropped on a full buffer
//   - mercator_mpl_evidence_pruned_total: Records deleted by retention
type EvidenceMetrics struct {
	recordsTotal *prometheus.CounterVec
	dropped      prometheus.Counter
	pruned       prometheus.Counter
}

// NewEvidenceMetrics creates and registers evidence metrics.
func NewEvidenceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvidenceMetrics {
	em := &EvidenceMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_records_total",
				Help:      "Total number of evidence records written",
			},
			[]string{"result"},
		),

		dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_dropped_total",
				Help:      "Total number of evidence records dropped because the buffer was full",
			},
		),

		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_pruned_total",
				Help:      "Total number of evidence records deleted by retention",
			},
		),
	}

	registry.MustRegister(em.recordsTotal, em.dropped, em.pruned)

	return em
}

// RecordWrite records an evidence write. result is "success" or "error".
func (em *EvidenceMetrics) RecordWrite(result string) {
	em.recordsTotal.WithLabelValues(result).Inc()
}

// RecordDropped records a record dropped before it reached storage.
func (em *EvidenceMetrics) RecordDropped() {
	em.dropped.Inc()
}

// RecordPruned records records deleted by a retention run.
func (em *EvidenceMetrics) RecordPruned(n int64) {
	if n > 0 {
		em.pruned.Add(float64(n))
	}
}
