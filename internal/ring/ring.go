package ring

import "github.com/ultraframe/shmring/internal/frame"

// Ring is a view over the segment's slot region.
type Ring struct {
	data   []byte
	Layout Layout
}

// New wraps the full segment byte slice; slot accessors index relative to
// Layout.DataOffset internally.
func New(data []byte, l Layout) *Ring {
	return &Ring{data: data, Layout: l}
}

// Slot returns the full slot buffer (header + pixel region) for index i.
func (r *Ring) Slot(i uint64) []byte {
	off := r.Layout.SlotOffset(i)
	return r.data[off : off+r.Layout.SlotSize]
}

// HeaderBytes returns the header sub-slice of slot i.
func (r *Ring) HeaderBytes(i uint64) []byte {
	return r.Slot(i)[:frame.HeaderSize]
}

// PixelRegion returns the full pixel-capable sub-slice of slot i (capacity
// SlotSize - HeaderSize); callers further slice it to a frame's dataSize.
func (r *Ring) PixelRegion(i uint64) []byte {
	return r.Slot(i)[frame.HeaderSize:]
}

// MaxDataSize is the largest dataSize a slot can hold.
func (r *Ring) MaxDataSize() uint64 {
	return r.Layout.SlotSize - frame.HeaderSize
}
