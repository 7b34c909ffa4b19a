package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ultraframe/shmring/internal/control"
	"github.com/ultraframe/shmring/internal/diag"
	"github.com/ultraframe/shmring/internal/lifecycle"
	"github.com/ultraframe/shmring/internal/metadata"
	"github.com/ultraframe/shmring/internal/ring"
	"github.com/ultraframe/shmring/internal/segment"
	"github.com/ultraframe/shmring/internal/stats"
	"github.com/ultraframe/shmring/internal/status"
)

// Engine is one open handle onto a segment: a producer if Config.Create
// was true, a reader otherwise. All exported methods are safe to call
// concurrently with each other except where spec §5 documents a
// single-sequential-reader assumption (ReadNextFrame).
type Engine struct {
	cfg     Config
	region  *segment.Region
	control *control.Block
	ring    *ring.Ring
	meta    []byte
	stats   *stats.Stats

	everActive atomic.Bool
	closed     atomic.Bool

	watchers *watcherSet
}

// State reports this handle's position in the segment's
// Uninitialized->Active->TornDown state machine (spec §4.4).
func (e *Engine) State() lifecycle.State {
	return lifecycle.Derive(e.control, e.everActive.Load(), e.closed.Load())
}

// Open creates or attaches a segment per spec §4.1/§4.4 and returns a ready
// Engine. The caller must Close it when done.
func Open(cfg Config, exporter stats.Exporter) (*Engine, error) {
	cfg = cfg.withDefaults()

	region, err := segment.CreateOrOpen(segment.Options{
		Name:         cfg.Name,
		Size:         cfg.Size,
		Backend:      cfg.Backend,
		Create:       cfg.Create,
		FilePath:     cfg.FilePath,
		LockInMemory: cfg.LockInMemory,
	})
	if err != nil {
		var se *segment.Error
		if ok := asSegmentError(err, &se); ok {
			return nil, status.New(status.Status(se.Status), se.Err)
		}
		return nil, status.New(status.CreationFailed, err)
	}

	if cfg.LockInMemory {
		region.Lock()
	}

	e := &Engine{cfg: cfg, region: region, stats: stats.New(exporter)}
	e.watchers = newWatcherSet(e)

	if cfg.Create {
		if err := e.initCreate(); err != nil {
			_ = region.Close()
			return nil, err
		}
	} else {
		if err := e.attach(); err != nil {
			_ = region.Close()
			return nil, err
		}
	}
	return e, nil
}

func asSegmentError(err error, target **segment.Error) bool {
	se, ok := err.(*segment.Error)
	if ok {
		*target = se
	}
	return ok
}

// initCreate lays out a freshly created segment's control block and
// metadata region, then publishes active=true last (spec §3 "Lifecycle").
func (e *Engine) initCreate() error {
	data := e.region.Bytes()
	layout, err := ring.Compute(uint64(len(data)), uint64(e.cfg.MaxFrameSize), uint64(e.cfg.MetadataSize))
	if err != nil {
		return err
	}
	if e.cfg.MaxFrames > 0 && layout.N != uint64(e.cfg.MaxFrames) {
		return status.New(status.InvalidSize,
			fmt.Errorf("requested MaxFrames=%d but Size=%d/MaxFrameSize=%d derives N=%d",
				e.cfg.MaxFrames, e.cfg.Size, e.cfg.MaxFrameSize, layout.N))
	}

	e.control = control.New(data[layout.ControlOffset:])
	e.ring = ring.New(data, layout)
	e.meta = data[layout.MetadataOffset : layout.MetadataOffset+layout.MetadataSize]

	e.control.Init(layout.MetadataOffset, layout.MetadataSize)

	if e.cfg.EnableMetadata {
		doc := metadata.NewDocument(e.cfg.FrameFormat, layout.N, layout.TotalSize, layout.DataOffset, layout.SlotSize)
		if err := metadata.WriteInto(e.meta, doc); err != nil {
			diag.Record(diag.Event{Kind: diag.KindMalformedJSON, Segment: e.cfg.Name, Detail: err.Error()})
		}
	}

	e.control.SetActive(true)
	e.everActive.Store(true)
	return nil
}

// attach waits (bounded) for active=true, then derives this process's
// Layout from the metadata region, falling back to a documented default
// geometry if metadata parsing fails (spec §4.1 "Geometry bootstrap").
func (e *Engine) attach() error {
	data := e.region.Bytes()
	e.control = control.New(data)

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(5*time.Millisecond), uint64(e.cfg.AttachWait/(5*time.Millisecond))+1)
	err := backoff.Retry(func() error {
		if e.control.Active() {
			return nil
		}
		return fmt.Errorf("segment %s not yet active", e.cfg.Name)
	}, b)
	if err != nil {
		return status.New(status.InternalError, fmt.Errorf("attach wait exceeded %s: %w", e.cfg.AttachWait, err))
	}
	e.everActive.Store(true)

	metadataOffset := e.control.MetadataOffset()
	metadataSize := e.control.MetadataSize()
	e.meta = data[metadataOffset : metadataOffset+metadataSize]

	doc, err := metadata.ReadFrom(e.meta)
	var layout ring.Layout
	if err != nil {
		diag.Record(diag.Event{Kind: diag.KindMalformedJSON, Segment: e.cfg.Name, Detail: err.Error()})
		layout, err = ring.Compute(uint64(len(data)), uint64(e.cfg.MaxFrameSize), metadataSize)
		if err != nil {
			return err
		}
	} else {
		layout = ring.Layout{
			ControlOffset:  0,
			MetadataOffset: metadataOffset,
			MetadataSize:   metadataSize,
			DataOffset:     doc.DataOffset,
			SlotSize:       doc.FrameSlotSize,
			N:              doc.MaxFrames,
			TotalSize:      uint64(len(data)),
		}
	}
	e.ring = ring.New(data, layout)
	return nil
}

// Statistics returns a consistent snapshot of this handle's accumulated
// statistics (spec §4.5 "Statistics reads return a consistent snapshot").
func (e *Engine) Statistics() stats.Snapshot {
	return e.stats.Snapshot()
}

// GetMetadata parses and returns the current metadata document.
func (e *Engine) GetMetadata() (metadata.Document, error) {
	doc, err := metadata.ReadFrom(e.meta)
	if err != nil {
		diag.Record(diag.Event{Kind: diag.KindMalformedJSON, Segment: e.cfg.Name, Detail: err.Error()})
		return metadata.Document{}, status.New(status.InternalError, err)
	}
	return doc, nil
}

// SetMetadata re-reads the current document, applies mutate, and writes it
// back (spec §4.3 "producer rewrites the region in place"). Only the
// creator should call this; it is not synchronized against concurrent
// writers because the protocol has exactly one producer.
func (e *Engine) SetMetadata(mutate func(*metadata.Document)) error {
	doc, err := metadata.ReadFrom(e.meta)
	if err != nil {
		doc = metadata.NewDocument(e.cfg.FrameFormat, e.ring.Layout.N, e.ring.Layout.TotalSize, e.ring.Layout.DataOffset, e.ring.Layout.SlotSize)
	}
	mutate(&doc)
	if err := metadata.WriteInto(e.meta, doc); err != nil {
		return status.New(status.InternalError, err)
	}
	return nil
}

// Close releases process-local resources for this handle: notification
// watchers are cancelled and awaited, and, for the creator, the backend
// identifier is removed from the host namespace (spec §4.1 "Destructor").
func (e *Engine) Close() error {
	if e.cfg.Create {
		e.control.SetActive(false)
	}
	e.closed.Store(true)
	e.watchers.closeAll()
	if e.cfg.LockInMemory {
		e.region.Unlock()
	}
	return e.region.Close()
}

// Layout exposes the computed/derived geometry, mainly for diagnostics and
// tests (spec §8 scenario 6 "Cross-attach geometry").
func (e *Engine) Layout() ring.Layout {
	return e.ring.Layout
}

// ControlBlock exposes the underlying control.Block for health checks and
// diagnostics; it must not be used to bypass the publication/consumption
// algorithms in write.go/read.go.
func (e *Engine) ControlBlock() *control.Block {
	return e.control
}
