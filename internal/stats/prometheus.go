package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter publishes Stats updates as Prometheus metrics, labeled
// by segment name so one process hosting multiple segments (e.g. several
// latest-frame readers) still gets per-segment series.
type PrometheusExporter struct {
	writeLatency prometheus.Histogram
	readLatency  prometheus.Histogram
	frameSize    prometheus.Histogram
	dropped      prometheus.Counter
	bufferFull   prometheus.Counter
	occupancy    prometheus.Gauge
}

// NewPrometheusExporter creates and registers metrics for segment name
// against reg. Registration errors (e.g. a second segment with the same
// name in-process) are tolerated: the exporter degrades to updating
// unregistered collectors rather than failing segment creation, since
// metrics are diagnostic, not load-bearing.
func NewPrometheusExporter(reg prometheus.Registerer, segmentName string) *PrometheusExporter {
	labels := prometheus.Labels{"segment": segmentName}
	e := &PrometheusExporter{
		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "shmring_write_latency_seconds",
			Help:        "writeFrame latency.",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 2, 20),
			ConstLabels: labels,
		}),
		readLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "shmring_read_latency_seconds",
			Help:        "readNextFrame/readLatestFrame latency.",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 2, 20),
			ConstLabels: labels,
		}),
		frameSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "shmring_frame_size_bytes",
			Help:        "Written frame payload size.",
			Buckets:     prometheus.ExponentialBuckets(1024, 2, 16),
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "shmring_dropped_frames_total",
			Help:        "Frames dropped due to a full buffer.",
			ConstLabels: labels,
		}),
		bufferFull: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "shmring_buffer_full_total",
			Help:        "writeFrame calls that observed BUFFER_FULL.",
			ConstLabels: labels,
		}),
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "shmring_occupancy",
			Help:        "writeIndex - readIndex at last write.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{e.writeLatency, e.readLatency, e.frameSize, e.dropped, e.bufferFull, e.occupancy} {
			_ = reg.Register(c)
		}
	}
	return e
}

func (e *PrometheusExporter) ObserveWrite(latency time.Duration, frameSize uint64) {
	e.writeLatency.Observe(latency.Seconds())
	e.frameSize.Observe(float64(frameSize))
}

func (e *PrometheusExporter) ObserveRead(latency time.Duration) {
	e.readLatency.Observe(latency.Seconds())
}

func (e *PrometheusExporter) ObserveDrop() {
	e.dropped.Inc()
	e.bufferFull.Inc()
}

func (e *PrometheusExporter) ObserveOccupancy(n uint64) {
	e.occupancy.Set(float64(n))
}
