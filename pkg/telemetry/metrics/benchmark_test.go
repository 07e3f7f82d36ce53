package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func Benchmark_Collector_RecordCall(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordCall("base64.encode", "base64", "ok", time.Microsecond)
	}
}

func Benchmark_Collector_RecordCall_Parallel(b *testing.B) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordCall("base64.encode", "base64", "ok", time.Microsecond)
		}
	})
}
