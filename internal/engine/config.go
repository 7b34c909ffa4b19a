// Package engine implements C5, the protocol engine (spec §4.5): the
// producer-side write path, the reader-side latest/next-frame paths, the
// optional notification watcher, and the statistics accumulators, all
// layered on internal/segment, internal/control, internal/metadata, and
// internal/ring.
package engine

import (
	"time"

	"github.com/ultraframe/shmring/internal/ring"
	"github.com/ultraframe/shmring/internal/segment"
)

// Config collects every option spec §6 lists as "recognised at create
// time", plus the attach-wait bound spec §4.4 documents a default for.
type Config struct {
	Name         string
	Size         int
	Backend      segment.Backend
	Create       bool
	FilePath     string
	LockInMemory bool

	// MaxFrameSize is the slot-size hint (0 selects ring.DefaultSlotSize).
	MaxFrameSize int
	// MaxFrames is a capacity hint (spec §6 "maxFrames"): when nonzero and
	// Create is set, the layout's derived slot count must equal it exactly,
	// so a Size too small (or too large) for the requested capacity is
	// rejected at creation time rather than silently giving the caller a
	// different-sized ring than they asked for.
	MaxFrames int
	// FrameFormat is stamped into the metadata region's frame_format field.
	FrameFormat string
	// MetadataSize is the fixed size of the metadata region.
	MetadataSize int
	// EnableMetadata, if false, still reserves the metadata region in the
	// layout (so geometry stays stable across configs) but skips writing
	// and opportunistically refreshing it.
	EnableMetadata bool
	// DropWhenFull selects the fullness policy used when a write finds the
	// buffer full and TimeoutMs == 0 in WriteFrameTimeout (spec §4.4 step
	// 2); true drops and counts, false overwrites the oldest slot.
	DropWhenFull bool
	// AttachWait bounds how long an attacher waits for active=true (spec
	// §4.4 "State machine", documented default 1s).
	AttachWait time.Duration
}

// DefaultMetadataSize is large enough for the required keys plus a
// last_frame subtree with comfortable headroom for JSON formatting.
const DefaultMetadataSize = 4096

// DefaultAttachWait is spec §4.4's documented default bounded wait.
const DefaultAttachWait = 1 * time.Second

// withDefaults fills in zero-value fields with their documented defaults.
func (c Config) withDefaults() Config {
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = ring.DefaultSlotSize
	}
	if c.MetadataSize == 0 {
		c.MetadataSize = DefaultMetadataSize
	}
	if c.AttachWait == 0 {
		c.AttachWait = DefaultAttachWait
	}
	if c.FrameFormat == "" {
		c.FrameFormat = "YUV"
	}
	return c
}
