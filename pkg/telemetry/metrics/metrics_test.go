package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "mpl",
		DurationBuckets: []float64{0.0001, 0.001, 0.01},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q", cfg.Namespace)
	}
	if cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("Subsystem = %q", cfg.Subsystem)
	}
	if len(cfg.DurationBuckets) != len(config.DefaultDurationBuckets) {
		t.Errorf("DurationBuckets = %v", cfg.DurationBuckets)
	}

	// Runtime collectors are registered on the fresh registry
	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "go_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected Go runtime metrics on default registry")
	}
}

func TestCollector_RecordCall(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCall("base64.decode", "base64", "ok", 10*time.Microsecond)
	collector.RecordCall("base64.decode", "base64", "ok", 20*time.Microsecond)
	collector.RecordCall("base64.decode", "base64", "error", 5*time.Microsecond)
	collector.RecordCall("json.verify_schema", "jsonschema", "soft_error", time.Millisecond)

	calls := collector.builtinMetrics.callsTotal
	if got := testutil.ToFloat64(calls.WithLabelValues("base64.decode", "base64", "ok")); got != 2 {
		t.Errorf("ok calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(calls.WithLabelValues("base64.decode", "base64", "error")); got != 1 {
		t.Errorf("error calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.builtinMetrics.softFailures.WithLabelValues("json.verify_schema")); got != 1 {
		t.Errorf("soft failures = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.builtinMetrics.callDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_RecordError(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordError("hex.decode", "decode")
	collector.RecordError("hex.decode", "decode")
	collector.RecordError("hex.decode", "arity")

	errs := collector.builtinMetrics.errorsTotal
	if got := testutil.ToFloat64(errs.WithLabelValues("hex.decode", "decode")); got != 2 {
		t.Errorf("decode errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(errs.WithLabelValues("hex.decode", "arity")); got != 1 {
		t.Errorf("arity errors = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordCall("hex.encode", "hex", "ok", time.Microsecond)
	collector.RecordError("hex.encode", "type")
	collector.RecordEvidenceDropped()

	if got := testutil.CollectAndCount(collector.builtinMetrics.callsTotal); got != 0 {
		t.Errorf("expected no call series when disabled, got %d", got)
	}
	if got := testutil.ToFloat64(collector.evidenceMetrics.dropped); got != 0 {
		t.Errorf("dropped = %v, want 0", got)
	}
}

func TestCollector_NilIsDisabled(t *testing.T) {
	var collector *Collector
	if collector.Enabled() {
		t.Error("nil collector should report disabled")
	}
	// Must not panic
	collector.RecordCall("hex.encode", "hex", "ok", time.Microsecond)
}

func TestCollector_RecordReload(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	all := []string{"base64", "hex", "json"}

	collector.RecordReload(nil, 5, []string{"hex", "json"}, all)
	collector.RecordReload(errors.New("bad config"), 0, nil, all)

	rm := collector.registryMetrics
	if got := testutil.ToFloat64(rm.reloadsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success reloads = %v", got)
	}
	if got := testutil.ToFloat64(rm.reloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error reloads = %v", got)
	}
	if got := testutil.ToFloat64(rm.builtins); got != 5 {
		t.Errorf("builtins = %v, want 5", got)
	}
	if got := testutil.ToFloat64(rm.familyEnabled.WithLabelValues("base64")); got != 0 {
		t.Errorf("base64 enabled = %v, want 0", got)
	}
	if got := testutil.ToFloat64(rm.familyEnabled.WithLabelValues("hex")); got != 1 {
		t.Errorf("hex enabled = %v, want 1", got)
	}
}

func TestCollector_EvidenceMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordEvidenceWrite(nil)
	collector.RecordEvidenceWrite(errors.New("disk full"))
	collector.RecordEvidenceDropped()
	collector.RecordEvidencePruned(12)
	collector.RecordEvidencePruned(0)

	em := collector.evidenceMetrics
	if got := testutil.ToFloat64(em.recordsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success writes = %v", got)
	}
	if got := testutil.ToFloat64(em.recordsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error writes = %v", got)
	}
	if got := testutil.ToFloat64(em.dropped); got != 1 {
		t.Errorf("dropped = %v", got)
	}
	if got := testutil.ToFloat64(em.pruned); got != 12 {
		t.Errorf("pruned = %v, want 12", got)
	}
}

func TestCollector_CardinalityFallback(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	for i := 0; i < defaultMaxCardinality+10; i++ {
		collector.RecordError(fmt.Sprintf("unknown.%d", i), "unknown")
	}

	errs := collector.builtinMetrics.errorsTotal
	if got := testutil.ToFloat64(errs.WithLabelValues(OtherLabel, "unknown")); got != 10 {
		t.Errorf("other = %v, want 10", got)
	}
	if got := collector.cardinalityLimiter.Count(); got != defaultMaxCardinality {
		t.Errorf("Count() = %d, want %d", got, defaultMaxCardinality)
	}
}

func TestCardinalityLimiter_Allow(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("first two labels should be allowed")
	}
	if !cl.Allow("a") {
		t.Error("existing label should stay allowed")
	}
	if cl.Allow("c") {
		t.Error("third label should be rejected")
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordCall("yaml.marshal", "yaml", "ok", time.Microsecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	expected := `
# HELP test_mpl_builtin_calls_total Total number of builtin calls
# TYPE test_mpl_builtin_calls_total counter
test_mpl_builtin_calls_total{builtin="yaml.marshal",family="yaml",outcome="ok"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "test_mpl_builtin_calls_total"); err != nil {
		t.Error(err)
	}
}
