package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// writeMetric decodes a single-sample Prometheus collector into its wire
// representation, the way the teacher's plugin/util_test.go inspected
// registered collectors directly rather than scraping an HTTP endpoint.
func writeMetric(t *testing.T, c prometheus.Metric) *dto.Metric {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m
}

func TestPrometheusExporterObserveDropIncrementsBothCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter(reg, "seg0")

	e.ObserveDrop()
	e.ObserveDrop()

	require.Equal(t, float64(2), writeMetric(t, e.dropped).GetCounter().GetValue())
	require.Equal(t, float64(2), writeMetric(t, e.bufferFull).GetCounter().GetValue())
}

func TestPrometheusExporterObserveOccupancySetsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter(reg, "seg1")

	e.ObserveOccupancy(7)

	require.Equal(t, float64(7), writeMetric(t, e.occupancy).GetGauge().GetValue())
}

func TestPrometheusExporterObserveWriteRecordsHistogramSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter(reg, "seg2")

	e.ObserveWrite(10*time.Millisecond, 4096)

	h := writeMetric(t, e.writeLatency).GetHistogram()
	require.EqualValues(t, 1, h.GetSampleCount())
}
