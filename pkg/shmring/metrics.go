package shmring

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"

	"github.com/ultraframe/shmring/internal/stats"
)

// NewPrometheusExporter builds a statistics Exporter that publishes
// Prometheus metrics labeled by segmentName, registered against reg.
func NewPrometheusExporter(reg prometheus.Registerer, segmentName string) Exporter {
	return stats.NewPrometheusExporter(reg, segmentName)
}

// NewOTelExporter builds a statistics Exporter that records OpenTelemetry
// metric instruments on meter.
func NewOTelExporter(meter metric.Meter) (Exporter, error) {
	return stats.NewOTelExporter(meter)
}

// MultiExporter fans one statistics stream out to several Exporters, e.g.
// both Prometheus and OTel at once.
func MultiExporter(exporters ...Exporter) Exporter {
	return stats.MultiExporter(exporters)
}
