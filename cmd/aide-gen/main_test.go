package main

import (
	"context"
	"testing"

	"github.com/aidekit/aide/internal/augment"
	"github.com/aidekit/aide/internal/dataset"
	"github.com/aidekit/aide/internal/observe"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestReport_RecordsGenerationCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ds := dataset.Dataset{
		"greeting": {"hello", "hi there"},
		"travel":   {"fly to london"},
	}
	ledgers := augment.Ledgers{
		"travel": {MissingEntity: 2, Duplicate: 1},
	}

	report(context.Background(), m, ds, ledgers, "random", 5)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	examples := sumMetric(rm, "aide.generation.examples")
	if examples != 3 {
		t.Errorf("generated examples recorded = %d, want 3", examples)
	}
	failures := sumMetric(rm, "aide.generation.failures")
	if failures != 3 {
		t.Errorf("generation failures recorded = %d, want 3", failures)
	}
}

// sumMetric totals all data points of the named int64 counter, or -1 when the
// metric was never recorded.
func sumMetric(rm metricdata.ResourceMetrics, name string) int64 {
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != name {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				return -1
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return -1
}
