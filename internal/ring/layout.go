// Package ring implements C4, the ring buffer and slot addressing (spec
// §3 "Frame slot", §4.1 "Geometry bootstrap", §4.4 "Addressing").
package ring

import (
	"fmt"

	"github.com/ultraframe/shmring/internal/control"
	"github.com/ultraframe/shmring/internal/frame"
	"github.com/ultraframe/shmring/internal/status"
)

// DefaultSlotSize is used when the caller gives no MaxFrameSize hint: big
// enough for one 1080p 4:2:2 frame (1920*1080*2 bytes) plus its header,
// matching the sizing the original_source/cpp implementation assumed.
const DefaultSlotSize = 1920*1080*2 + frame.HeaderSize

// Layout is the fixed geometry of a segment, computed once at creation and
// re-derived by attachers from the metadata region.
type Layout struct {
	ControlOffset  uint64
	MetadataOffset uint64
	MetadataSize   uint64
	DataOffset     uint64
	SlotSize       uint64
	N              uint64 // slot count
	TotalSize      uint64
}

// Compute derives a Layout for a newly created segment of totalSize bytes,
// given a slot-size hint (0 selects DefaultSlotSize) and a fixed metadata
// region size. Implements spec §4.1 "Geometry bootstrap": slotSize from the
// hint, then N = floor((S - controlBlockSize - metadataSize) / slotSize)
// with N >= 1 required.
func Compute(totalSize uint64, slotSizeHint uint64, metadataSize uint64) (Layout, error) {
	slotSize := slotSizeHint
	if slotSize == 0 {
		slotSize = DefaultSlotSize
	}
	if slotSize <= frame.HeaderSize {
		return Layout{}, status.New(status.InvalidSize,
			fmt.Errorf("slot size %d must exceed frame header size %d", slotSize, frame.HeaderSize))
	}

	controlOffset := uint64(0)
	metadataOffset := controlOffset + control.Size
	dataOffset := metadataOffset + metadataSize

	minSize := dataOffset + frame.HeaderSize + 1
	if totalSize < minSize {
		return Layout{}, status.New(status.InvalidSize,
			fmt.Errorf("segment size %d below minimum %d (control=%d metadata=%d header=%d)",
				totalSize, minSize, control.Size, metadataSize, frame.HeaderSize))
	}

	avail := totalSize - dataOffset
	n := avail / slotSize
	if n < 1 {
		return Layout{}, status.New(status.InvalidSize,
			fmt.Errorf("segment too small to hold one slot of size %d", slotSize))
	}

	return Layout{
		ControlOffset:  controlOffset,
		MetadataOffset: metadataOffset,
		MetadataSize:   metadataSize,
		DataOffset:     dataOffset,
		SlotSize:       slotSize,
		N:              n,
		TotalSize:      totalSize,
	}, nil
}

// SlotOffset returns slot i's byte offset (spec §4.4 "Addressing"):
// dataOffset + (i mod N) * slotSize.
func (l Layout) SlotOffset(i uint64) uint64 {
	return l.DataOffset + (i%l.N)*l.SlotSize
}

// Fits reports whether dataOffset + N*slotSize <= S (spec invariant 3).
func (l Layout) Fits() bool {
	return l.DataOffset+l.N*l.SlotSize <= l.TotalSize
}
