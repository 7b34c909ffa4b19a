// Package stats implements the statistics accumulators spec §4.5 names:
// per-operation latency (running average and max), average frame size,
// peak occupancy, and buffer-full events. Snapshot reads are taken under a
// local mutex (spec §4.5 "Statistics reads return a consistent snapshot").
package stats

import (
	"sync"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
)

// sampleWindow bounds how many recent write-latency samples are kept in the
// Workiva queue, so its memory stays bounded regardless of run length. The
// queue is not read by Snapshot: the reported averages and maxima cover
// every sample since New.
const sampleWindow = 256

// Snapshot is a consistent, point-in-time copy of the accumulated stats.
type Snapshot struct {
	TotalWrites         uint64
	TotalReads          uint64
	DroppedFrames       uint64
	BufferFullEvents    uint64
	AvgWriteLatencyNS   int64
	MaxWriteLatencyNS   int64
	AvgReadLatencyNS    int64
	MaxReadLatencyNS    int64
	AvgFrameSizeBytes   uint64
	PeakOccupancy       uint64
}

// Stats accumulates the statistics for one segment handle.
type Stats struct {
	mu sync.Mutex

	totalWrites, totalReads        uint64
	droppedFrames, bufferFullEvts  uint64
	writeLatSum, writeLatMax       int64
	readLatSum, readLatMax         int64
	frameSizeSum                   uint64
	peakOccupancy                  uint64

	recentWriteLat *queuepkg.Queue
	exporter       Exporter
}

// Exporter receives updates for external metrics systems (Prometheus/OTel).
// Nil fields/methods are no-ops; see NewPrometheusExporter and
// NewOTelExporter.
type Exporter interface {
	ObserveWrite(latency time.Duration, frameSize uint64)
	ObserveRead(latency time.Duration)
	ObserveDrop()
	ObserveOccupancy(n uint64)
}

// New creates a Stats accumulator. exporter may be nil.
func New(exporter Exporter) *Stats {
	return &Stats{
		recentWriteLat: queuepkg.New(sampleWindow),
		exporter:       exporter,
	}
}

// RecordWrite folds one completed writeFrame's latency and frame size into
// the running stats (spec §4.4 "Record write-latency statistics").
func (s *Stats) RecordWrite(latency time.Duration, frameSize uint64, occupancy uint64) {
	ns := latency.Nanoseconds()

	s.mu.Lock()
	s.totalWrites++
	s.writeLatSum += ns
	if ns > s.writeLatMax {
		s.writeLatMax = ns
	}
	s.frameSizeSum += frameSize
	if occupancy > s.peakOccupancy {
		s.peakOccupancy = occupancy
	}
	s.mu.Unlock()

	if s.recentWriteLat.Len() >= sampleWindow {
		_, _ = s.recentWriteLat.Get(1)
	}
	_ = s.recentWriteLat.Put(ns)

	if s.exporter != nil {
		s.exporter.ObserveWrite(latency, frameSize)
		s.exporter.ObserveOccupancy(occupancy)
	}
}

// RecordRead folds one completed readNextFrame/readLatestFrame's latency.
func (s *Stats) RecordRead(latency time.Duration) {
	ns := latency.Nanoseconds()
	s.mu.Lock()
	s.totalReads++
	s.readLatSum += ns
	if ns > s.readLatMax {
		s.readLatMax = ns
	}
	s.mu.Unlock()

	if s.exporter != nil {
		s.exporter.ObserveRead(latency)
	}
}

// RecordDrop records a BUFFER_FULL outcome (spec §8 "droppedFrames increases
// only when writeFrame returns BUFFER_FULL or the overwrite policy advances
// readIndex").
func (s *Stats) RecordDrop() {
	s.mu.Lock()
	s.droppedFrames++
	s.bufferFullEvts++
	s.mu.Unlock()

	if s.exporter != nil {
		s.exporter.ObserveDrop()
	}
}

// RecordOverwrite records the "ring mode" overwrite-on-full path, which also
// counts as a dropped frame (spec §8 scenario 3) without being a
// BUFFER_FULL return.
func (s *Stats) RecordOverwrite() {
	s.mu.Lock()
	s.droppedFrames++
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the accumulated statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TotalWrites:       s.totalWrites,
		TotalReads:        s.totalReads,
		DroppedFrames:     s.droppedFrames,
		BufferFullEvents:  s.bufferFullEvts,
		MaxWriteLatencyNS: s.writeLatMax,
		MaxReadLatencyNS:  s.readLatMax,
		PeakOccupancy:     s.peakOccupancy,
	}
	if s.totalWrites > 0 {
		snap.AvgWriteLatencyNS = s.writeLatSum / int64(s.totalWrites)
		snap.AvgFrameSizeBytes = s.frameSizeSum / s.totalWrites
	}
	if s.totalReads > 0 {
		snap.AvgReadLatencyNS = s.readLatSum / int64(s.totalReads)
	}
	return snap
}
