package metrics

import (
	"sync"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// OtherLabel replaces builtin names once the cardinality limit is reached.
// Unknown names arrive from untrusted input in serve mode.
const OtherLabel = "other"

// defaultMaxCardinality bounds distinct builtin label values.
const defaultMaxCardinality = 256

// Collector is the main orchestrator for all Prometheus metrics of the
// builtin runtime. It manages metric registration and provides a unified
// interface for recording metrics across components.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	builtinMetrics  *BuiltinMetrics
	registryMetrics *RegistryMetrics
	evidenceMetrics *EvidenceMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry carrying the
// Go runtime and process collectors is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "mercator",
//		Subsystem: "mpl",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		// Builtins run in microseconds; the top bucket catches large YAML documents
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(defaultMaxCardinality),
	}

	c.builtinMetrics = NewBuiltinMetrics(cfg, registry)
	c.registryMetrics = NewRegistryMetrics(cfg, registry)
	c.evidenceMetrics = NewEvidenceMetrics(cfg, registry)

	return c
}

// Enabled reports whether recording is active.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordCall records metrics for a completed builtin call.
//
// Parameters:
//   - builtin: Builtin name as called (e.g., "base64.decode")
//   - family: Family of the resolved builtin, empty for unknown names
//   - outcome: "ok", "error" or "soft_error"
//   - duration: Call duration
//
// Example:
//
//	collector.RecordCall("json.unmarshal", "json", "ok", 12*time.Microsecond)
func (c *Collector) RecordCall(builtin, family, outcome string, duration time.Duration) {
	if !c.Enabled() {
		return
	}

	builtin = c.label(builtin)
	c.builtinMetrics.RecordCall(builtin, family, outcome, duration)
	if outcome == "soft_error" {
		c.builtinMetrics.RecordSoftFailure(builtin)
	}
}

// RecordError records an error raised by a builtin or the dispatcher.
func (c *Collector) RecordError(builtin, kind string) {
	if !c.Enabled() {
		return
	}

	c.builtinMetrics.RecordError(c.label(builtin), kind)
}

// RecordArgumentSize records the encoded size of a call's arguments.
func (c *Collector) RecordArgumentSize(builtin string, sizeBytes int) {
	if !c.Enabled() {
		return
	}

	c.builtinMetrics.RecordArgumentSize(c.label(builtin), sizeBytes)
}

// RecordReload records a registry reload and, on success, the new shape.
func (c *Collector) RecordReload(err error, count int, enabled, all []string) {
	if !c.Enabled() {
		return
	}

	if err != nil {
		c.registryMetrics.RecordReload("error")
		return
	}
	c.registryMetrics.RecordReload("success")
	c.registryMetrics.SetActive(count, enabled, all)
}

// SetRegistry publishes the shape of the active registry without counting a
// reload.
func (c *Collector) SetRegistry(count int, enabled, all []string) {
	if !c.Enabled() {
		return
	}

	c.registryMetrics.SetActive(count, enabled, all)
}

// RecordEvidenceWrite records an evidence store write.
func (c *Collector) RecordEvidenceWrite(err error) {
	if !c.Enabled() {
		return
	}

	if err != nil {
		c.evidenceMetrics.RecordWrite("error")
		return
	}
	c.evidenceMetrics.RecordWrite("success")
}

// RecordEvidenceDropped records an evidence record dropped on a full buffer.
func (c *Collector) RecordEvidenceDropped() {
	if !c.Enabled() {
		return
	}

	c.evidenceMetrics.RecordDropped()
}

// RecordEvidencePruned records records removed by retention.
func (c *Collector) RecordEvidencePruned(n int64) {
	if !c.Enabled() {
		return
	}

	c.evidenceMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) label(builtin string) string {
	if !c.cardinalityLimiter.Allow(builtin) {
		return OtherLabel
	}
	return builtin
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(label string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[label]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[label]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[label] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
