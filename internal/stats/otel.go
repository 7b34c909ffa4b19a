package stats

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// OTelExporter mirrors PrometheusExporter's events as OpenTelemetry metric
// instruments, for callers who wire an OTel SDK MeterProvider instead of
// (or alongside) Prometheus. Grounded on the teacher's pkg/shm/buffer.go,
// which threads a metric.Meter through its Config but never used it; here
// it is actually exercised.
type OTelExporter struct {
	ctx          context.Context
	writeLatency metric.Float64Histogram
	readLatency  metric.Float64Histogram
	frameSize    metric.Int64Histogram
	dropped      metric.Int64Counter
	occupancy    metric.Int64Gauge
}

// NewOTelExporter creates instruments on meter, which must not be nil (a
// nil meter is dereferenced). A caller that does not export to OTel passes
// a nil Exporter instead of building one.
func NewOTelExporter(meter metric.Meter) (*OTelExporter, error) {
	writeLatency, err := meter.Float64Histogram("shmring.write.latency",
		metric.WithUnit("s"), metric.WithDescription("writeFrame latency"))
	if err != nil {
		return nil, err
	}
	readLatency, err := meter.Float64Histogram("shmring.read.latency",
		metric.WithUnit("s"), metric.WithDescription("readNextFrame/readLatestFrame latency"))
	if err != nil {
		return nil, err
	}
	frameSize, err := meter.Int64Histogram("shmring.frame.size",
		metric.WithUnit("By"), metric.WithDescription("written frame payload size"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter("shmring.dropped_frames",
		metric.WithDescription("frames dropped due to a full buffer"))
	if err != nil {
		return nil, err
	}
	occupancy, err := meter.Int64Gauge("shmring.occupancy",
		metric.WithDescription("writeIndex - readIndex at last write"))
	if err != nil {
		return nil, err
	}
	return &OTelExporter{
		ctx:          context.Background(),
		writeLatency: writeLatency,
		readLatency:  readLatency,
		frameSize:    frameSize,
		dropped:      dropped,
		occupancy:    occupancy,
	}, nil
}

func (e *OTelExporter) ObserveWrite(latency time.Duration, frameSize uint64) {
	e.writeLatency.Record(e.ctx, latency.Seconds())
	e.frameSize.Record(e.ctx, int64(frameSize))
}

func (e *OTelExporter) ObserveRead(latency time.Duration) {
	e.readLatency.Record(e.ctx, latency.Seconds())
}

func (e *OTelExporter) ObserveDrop() {
	e.dropped.Add(e.ctx, 1)
}

func (e *OTelExporter) ObserveOccupancy(n uint64) {
	e.occupancy.Record(e.ctx, int64(n))
}

// MultiExporter fans out to several Exporters, letting a caller wire both
// Prometheus and OTel at once.
type MultiExporter []Exporter

func (m MultiExporter) ObserveWrite(latency time.Duration, frameSize uint64) {
	for _, e := range m {
		if e != nil {
			e.ObserveWrite(latency, frameSize)
		}
	}
}

func (m MultiExporter) ObserveRead(latency time.Duration) {
	for _, e := range m {
		if e != nil {
			e.ObserveRead(latency)
		}
	}
}

func (m MultiExporter) ObserveDrop() {
	for _, e := range m {
		if e != nil {
			e.ObserveDrop()
		}
	}
}

func (m MultiExporter) ObserveOccupancy(n uint64) {
	for _, e := range m {
		if e != nil {
			e.ObserveOccupancy(n)
		}
	}
}
