// Package control implements the fixed-offset, cache-line-aligned control
// block described in spec §3 ("Control block") and §4.2: the single
// coordination point between the producer and readers.
//
// Every field is accessed through sync/atomic on a pointer derived from the
// mapped segment's byte slice. Go's atomic package provides sequentially
// consistent ordering on every platform the runtime supports, which is
// strictly stronger than the acquire/release ordering spec §4.2 requires, so
// no platform-specific memory-barrier code is needed (unlike the teacher's
// internal/shm/atomic.go stubs, which left this unimplemented).
package control

import (
	"sync/atomic"
	"unsafe"
)

// Byte offsets within the control block, all 8-byte aligned.
const (
	offWriteIndex          = 0
	offReadIndex            = 8
	offFrameCount           = 16
	offTotalFramesWritten   = 24
	offTotalFramesRead      = 32
	offDroppedFrames        = 40
	offActive               = 48
	offLastWriteTime        = 56
	offLastReadTime         = 64
	offMetadataOffset       = 72
	offMetadataSize         = 80
	offFlags                = 88
)

// Size is the fixed size of the control block, padded to two cache lines
// (128 bytes) so slot 0 never shares a cache line with a hot atomic field.
const Size = 128

// Block is a view over the control block's bytes. It does not own the
// memory; callers must keep the backing mapping alive for Block's lifetime.
type Block struct {
	b []byte
}

// New wraps buf[:Size] as a control block view. buf must be at least Size
// bytes and must come from the mapped segment (so all processes observe the
// same bytes).
func New(buf []byte) *Block {
	return &Block{b: buf[:Size:Size]}
}

func (c *Block) ptr(off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&c.b[off]))
}

// Init zeroes every field except those explicitly set, matching spec §3
// lifecycle: "initializes the control block to zeros (then sets active =
// true last)". Init itself does not set active; callers set it last.
func (c *Block) Init(metadataOffset, metadataSize uint64) {
	for _, off := range []int{
		offWriteIndex, offReadIndex, offFrameCount, offTotalFramesWritten,
		offTotalFramesRead, offDroppedFrames, offActive, offLastWriteTime,
		offLastReadTime, offFlags,
	} {
		atomic.StoreUint64(c.ptr(off), 0)
	}
	atomic.StoreUint64(c.ptr(offMetadataOffset), metadataOffset)
	atomic.StoreUint64(c.ptr(offMetadataSize), metadataSize)
}

func (c *Block) WriteIndex() uint64          { return atomic.LoadUint64(c.ptr(offWriteIndex)) }
func (c *Block) SetWriteIndex(v uint64)      { atomic.StoreUint64(c.ptr(offWriteIndex), v) }
func (c *Block) ReadIndex() uint64           { return atomic.LoadUint64(c.ptr(offReadIndex)) }
func (c *Block) SetReadIndex(v uint64)       { atomic.StoreUint64(c.ptr(offReadIndex), v) }
func (c *Block) FrameCount() uint64          { return atomic.LoadUint64(c.ptr(offFrameCount)) }
func (c *Block) SetFrameCount(v uint64)      { atomic.StoreUint64(c.ptr(offFrameCount), v) }

func (c *Block) TotalFramesWritten() uint64 { return atomic.LoadUint64(c.ptr(offTotalFramesWritten)) }
func (c *Block) IncTotalFramesWritten()     { atomic.AddUint64(c.ptr(offTotalFramesWritten), 1) }
func (c *Block) TotalFramesRead() uint64    { return atomic.LoadUint64(c.ptr(offTotalFramesRead)) }
func (c *Block) IncTotalFramesRead()        { atomic.AddUint64(c.ptr(offTotalFramesRead), 1) }
func (c *Block) DroppedFrames() uint64      { return atomic.LoadUint64(c.ptr(offDroppedFrames)) }
func (c *Block) IncDroppedFrames()          { atomic.AddUint64(c.ptr(offDroppedFrames), 1) }

// Active reports whether the producer has finished initialization.
func (c *Block) Active() bool { return atomic.LoadUint64(c.ptr(offActive)) != 0 }

// SetActive publishes (v=true) or retracts (v=false, on graceful shutdown)
// the active flag. Must be the last store performed during producer
// initialization so readers never observe a partially-initialized block.
func (c *Block) SetActive(v bool) {
	var n uint64
	if v {
		n = 1
	}
	atomic.StoreUint64(c.ptr(offActive), n)
}

func (c *Block) LastWriteTime() int64     { return int64(atomic.LoadUint64(c.ptr(offLastWriteTime))) }
func (c *Block) SetLastWriteTime(ns int64) { atomic.StoreUint64(c.ptr(offLastWriteTime), uint64(ns)) }
func (c *Block) LastReadTime() int64      { return int64(atomic.LoadUint64(c.ptr(offLastReadTime))) }
func (c *Block) SetLastReadTime(ns int64)  { atomic.StoreUint64(c.ptr(offLastReadTime), uint64(ns)) }

// MetadataOffset/MetadataSize are fixed at creation time; they are written
// once by Init and never change afterward, so a plain (non-atomic) read is
// safe once Active() is observed true (publication of active happens-after
// these stores thanks to SetActive always being the last store on create).
func (c *Block) MetadataOffset() uint64 { return atomic.LoadUint64(c.ptr(offMetadataOffset)) }
func (c *Block) MetadataSize() uint64   { return atomic.LoadUint64(c.ptr(offMetadataSize)) }

func (c *Block) Flags() uint64     { return atomic.LoadUint64(c.ptr(offFlags)) }
func (c *Block) SetFlags(v uint64) { atomic.StoreUint64(c.ptr(offFlags), v) }
