package shmring

import (
	"time"

	"github.com/ultraframe/shmring/internal/engine"
	"github.com/ultraframe/shmring/internal/health"
	"github.com/ultraframe/shmring/internal/lifecycle"
	"github.com/ultraframe/shmring/internal/metadata"
	"github.com/ultraframe/shmring/internal/registry"
	"github.com/ultraframe/shmring/internal/stats"
)

// Exporter receives write/read/drop/occupancy events for an external
// metrics system; see NewPrometheusExporter and NewOTelExporter.
type Exporter = stats.Exporter

// Segment is one open handle onto a named segment: a producer if
// Config.Create was true when it was opened, a reader otherwise.
type Segment struct {
	name   string
	eng    *engine.Engine
	health *health.Checker
}

// Open validates cfg and creates or attaches the segment it describes
// (spec §4.1, §4.4 "State machine"). exporter may be nil.
func Open(cfg *Config, exporter Exporter) (*Segment, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	eng, err := engine.Open(cfg.toEngineConfig(), exporter)
	if err != nil {
		return nil, err
	}
	return &Segment{name: cfg.Name, eng: eng}, nil
}

// Name returns the segment's identifying name.
func (s *Segment) Name() string { return s.name }

// Size returns the segment's total mapped byte size.
func (s *Segment) Size() int { return int(s.eng.Layout().TotalSize) }

// SlotCount returns N, the number of frame slots.
func (s *Segment) SlotCount() uint64 { return s.eng.Layout().N }

// SlotSize returns the fixed per-slot byte size.
func (s *Segment) SlotSize() uint64 { return s.eng.Layout().SlotSize }

// WriteFrame publishes req with no wait for space; see
// WriteFrameTimeout.
func (s *Segment) WriteFrame(req WriteRequest) error {
	return s.eng.WriteFrame(req)
}

// WriteFrameTimeout publishes req, waiting up to timeout for space to
// become available if the buffer is full (spec §4.4 step 2).
func (s *Segment) WriteFrameTimeout(req WriteRequest, timeout time.Duration) error {
	return s.eng.WriteFrameTimeout(req, timeout)
}

// ReadLatestFrame returns a view of the most recently published frame
// without advancing readIndex.
func (s *Segment) ReadLatestFrame() (Frame, error) {
	return s.eng.ReadLatestFrame()
}

// ReadNextFrame returns the next unconsumed frame in publication order,
// waiting up to wait if the buffer is currently empty.
func (s *Segment) ReadNextFrame(wait time.Duration) (Frame, error) {
	return s.eng.ReadNextFrame(wait)
}

// RegisterNotification spawns a cooperative watcher that invokes cb for
// each newly published frame, in order, until UnregisterNotification is
// called or the Segment is closed.
func (s *Segment) RegisterNotification(cb func(Frame)) (int, error) {
	return s.eng.RegisterNotification(engine.Callback(cb))
}

// UnregisterNotification cancels a previously registered watcher.
func (s *Segment) UnregisterNotification(id int) error {
	return s.eng.UnregisterNotification(id)
}

// Statistics returns a consistent snapshot of accumulated statistics.
func (s *Segment) Statistics() stats.Snapshot {
	return s.eng.Statistics()
}

// GetMetadata returns the current parsed metadata document.
func (s *Segment) GetMetadata() (metadata.Document, error) {
	return s.eng.GetMetadata()
}

// SetMetadata applies mutate to the current metadata document and writes
// it back. Intended for the producer only.
func (s *Segment) SetMetadata(mutate func(*metadata.Document)) error {
	return s.eng.SetMetadata(mutate)
}

// Health lazily builds and returns a health.Checker for this segment,
// reusable across calls.
func (s *Segment) Health() *health.Checker {
	if s.health == nil {
		s.health = health.New(s.name, s.eng.ControlBlock())
	}
	return s.health
}

// State reports this handle's position in the segment's
// Uninitialized->Active->TornDown state machine (spec §4.4).
func (s *Segment) State() lifecycle.State {
	return s.eng.State()
}

// Close releases this handle's process-local resources (spec §4.1
// "Destructor").
func (s *Segment) Close() error {
	return s.eng.Close()
}

// Registry dedupes Open calls within one process by segment name, per
// spec §9 Design Notes ("Global singleton registry of segments by name...
// Model as a process-local, explicitly-constructed registry"). Unlike a
// package-level singleton, a Registry is ordinary caller-owned state.
type Registry struct {
	r *registry.Registry
}

// NewRegistry creates an empty, process-local segment registry.
func NewRegistry() *Registry {
	return &Registry{r: registry.New()}
}

// Open returns the existing Segment for cfg.Name if this Registry already
// opened it, else opens a new one and tracks it.
func (reg *Registry) Open(cfg *Config, exporter Exporter) (*Segment, error) {
	h, err := reg.r.LoadOrStore(cfg.Name, func() (registry.Handle, error) {
		return Open(cfg, exporter)
	})
	if err != nil {
		return nil, err
	}
	return h.(*Segment), nil
}

// Close closes and untracks the segment registered under name, if any.
func (reg *Registry) Close(name string) error {
	h, ok := reg.r.Get(name)
	if !ok {
		return nil
	}
	reg.r.Delete(name)
	return h.Close()
}
