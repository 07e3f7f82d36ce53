package metrics

import (
	"mercator-hq/mpl-builtins/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics tracks the builtin registry held by the dispatcher.
//
// Metrics:
//   - mercator_mpl_registry_reloads_total: Registry reloads by result
//   - mercator_mpl_registry_builtins: Number of registered builtins
//   - mercator_mpl_registry_family_enabled: 1 for each enabled family
type RegistryMetrics struct {
	reloadsTotal  *prometheus.CounterVec
	builtins      prometheus.Gauge
	familyEnabled *prometheus.GaugeVec
}

// NewRegistryMetrics creates and registers registry metrics.
func NewRegistryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RegistryMetrics {
	rm := &RegistryMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "registry_reloads_total",
				Help:      "Total number of builtin registry reloads",
			},
			[]string{"result"},
		),

		builtins: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "registry_builtins",
				Help:      "Number of builtins in the active registry",
			},
		),

		familyEnabled: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "registry_family_enabled",
				Help:      "Whether a builtin family is enabled (1) or not (0)",
			},
			[]string{"family"},
		),
	}

	registry.MustRegister(rm.reloadsTotal, rm.builtins, rm.familyEnabled)

	return rm
}

// RecordReload records a reload attempt. result is "success" or "error".
func (rm *RegistryMetrics) RecordReload(result string) {
	rm.reloadsTotal.WithLabelValues(result).Inc()
}

// SetActive publishes the shape of the active registry. all lists every
// known family so disabled ones read 0 instead of disappearing.
func (rm *RegistryMetrics) SetActive(count int, enabled, all []string) {
	rm.builtins.Set(float64(count))

	on := make(map[string]bool, len(enabled))
	for _, f := range enabled {
		on[f] = true
	}
	for _, f := range all {
		if on[f] {
			rm.familyEnabled.WithLabelValues(f).Set(1)
		} else {
			rm.familyEnabled.WithLabelValues(f).Set(0)
		}
	}
}
