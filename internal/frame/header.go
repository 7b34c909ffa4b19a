// Package frame defines the binary frame header that sits at the base of
// every ring-buffer slot (spec §3 "Frame header") and the format/flag
// vocabularies stored in it.
//
// Fields are read and written at fixed byte offsets with
// encoding/binary.LittleEndian rather than via an aliased Go struct: the
// spec requires the layout to be "naturally aligned, little-endian on
// supported platforms" and readable by clients in other languages, so the
// wire layout must not depend on this compiler's struct padding rules.
package frame

import (
	"encoding/binary"
	"fmt"
)

// Byte offsets within a frame header, per spec §3.
const (
	offFrameID         = 0
	offTimestamp       = 8
	offWidth           = 16
	offHeight          = 20
	offBytesPerPixel   = 24
	offDataSize        = 28
	offFormatCode      = 32
	offFlags           = 36
	offSequenceNumber  = 40
	offMetadataOffset  = 48
	offMetadataSize    = 52
	// 56..HeaderSize reserved padding, keeps the header 8-byte aligned and
	// leaves room for per-frame metadata descriptor growth without an ABI bump.
)

// HeaderSize is the fixed, 8-byte-aligned size of a frame header in bytes.
const HeaderSize = 64

// Header is the in-memory, decoded view of a frame header.
type Header struct {
	FrameID        uint64
	Timestamp      uint64 // nanoseconds, wall clock (see SPEC_FULL.md §4 clock domain decision)
	Width          uint32
	Height         uint32
	BytesPerPixel  uint32
	DataSize       uint32
	FormatCode     FormatCode
	Flags          Flags
	SequenceNumber uint64
	MetadataOffset uint32
	MetadataSize   uint32
}

// Encode writes h into buf[:HeaderSize]. buf must be at least HeaderSize
// bytes; Encode panics (via the runtime's bounds check) otherwise, since a
// caller passing too small a slot buffer is a programming error, not a
// recoverable condition.
func Encode(buf []byte, h Header) {
	binary.LittleEndian.PutUint64(buf[offFrameID:], h.FrameID)
	binary.LittleEndian.PutUint64(buf[offTimestamp:], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[offWidth:], h.Width)
	binary.LittleEndian.PutUint32(buf[offHeight:], h.Height)
	binary.LittleEndian.PutUint32(buf[offBytesPerPixel:], h.BytesPerPixel)
	binary.LittleEndian.PutUint32(buf[offDataSize:], h.DataSize)
	binary.LittleEndian.PutUint32(buf[offFormatCode:], uint32(h.FormatCode))
	binary.LittleEndian.PutUint32(buf[offFlags:], uint32(h.Flags))
	binary.LittleEndian.PutUint64(buf[offSequenceNumber:], h.SequenceNumber)
	binary.LittleEndian.PutUint32(buf[offMetadataOffset:], h.MetadataOffset)
	binary.LittleEndian.PutUint32(buf[offMetadataSize:], h.MetadataSize)
}

// Decode reads a Header out of buf[:HeaderSize].
func Decode(buf []byte) Header {
	return Header{
		FrameID:        binary.LittleEndian.Uint64(buf[offFrameID:]),
		Timestamp:      binary.LittleEndian.Uint64(buf[offTimestamp:]),
		Width:          binary.LittleEndian.Uint32(buf[offWidth:]),
		Height:         binary.LittleEndian.Uint32(buf[offHeight:]),
		BytesPerPixel:  binary.LittleEndian.Uint32(buf[offBytesPerPixel:]),
		DataSize:       binary.LittleEndian.Uint32(buf[offDataSize:]),
		FormatCode:     FormatCode(binary.LittleEndian.Uint32(buf[offFormatCode:])),
		Flags:          Flags(binary.LittleEndian.Uint32(buf[offFlags:])),
		SequenceNumber: binary.LittleEndian.Uint64(buf[offSequenceNumber:]),
		MetadataOffset: binary.LittleEndian.Uint32(buf[offMetadataOffset:]),
		MetadataSize:   binary.LittleEndian.Uint32(buf[offMetadataSize:]),
	}
}

// SequenceAt reads only the sequenceNumber field, used by the tie-break
// staleness check without decoding the whole header.
func SequenceAt(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf[offSequenceNumber:])
}

func (h Header) String() string {
	return fmt.Sprintf("Header{frameId=%d seq=%d %dx%d bpp=%d dataSize=%d format=%s flags=%s}",
		h.FrameID, h.SequenceNumber, h.Width, h.Height, h.BytesPerPixel, h.DataSize, h.FormatCode, h.Flags)
}
