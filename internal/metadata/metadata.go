// Package metadata implements the segment's metadata region (spec §3
// "Metadata region", §4.3): a null-terminated JSON document describing
// buffer geometry and, optionally, the most recently written frame.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/bytebufferpool"
)

// FormatVersion is the only ABI version this module understands. Per spec
// §6, consumers must reject unknown major versions.
const FormatVersion = "1.0"

// DocumentType is the required "type" field value.
const DocumentType = "medical_imaging_frames"

// LastFrame is the optional "last_frame" subtree, describing the most
// recently published frame's header fields and attribute flags.
type LastFrame struct {
	FrameID        uint64 `json:"frame_id"`
	SequenceNumber uint64 `json:"sequence_number"`
	Width          uint32 `json:"width"`
	Height         uint32 `json:"height"`
	Format         string `json:"format"`
	DataSize       uint32 `json:"data_size"`
	TimestampNS    int64  `json:"timestamp_ns"`
}

// Document is the full metadata JSON document (spec §3).
type Document struct {
	FormatVersion  string     `json:"format_version"`
	CreatedAt      string     `json:"created_at"`
	Type           string     `json:"type"`
	FrameFormat    string     `json:"frame_format"`
	MaxFrames      uint64     `json:"max_frames"`
	BufferSize     uint64     `json:"buffer_size"`
	DataOffset     uint64     `json:"data_offset"`
	FrameSlotSize  uint64     `json:"frame_slot_size"`
	LastFrame      *LastFrame `json:"last_frame,omitempty"`
}

// NewDocument builds the required-field document for a freshly created
// segment. CreatedAt is stamped with the wall clock at creation time.
func NewDocument(frameFormat string, maxFrames, bufferSize, dataOffset, frameSlotSize uint64) Document {
	return Document{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
		Type:          DocumentType,
		FrameFormat:   frameFormat,
		MaxFrames:     maxFrames,
		BufferSize:    bufferSize,
		DataOffset:    dataOffset,
		FrameSlotSize: frameSlotSize,
	}
}

// ErrTooLarge is returned by WriteInto when the marshalled document (plus
// its trailing NUL) would not fit in the region; per spec §4.3 the previous
// content must remain intact in this case.
var ErrTooLarge = fmt.Errorf("metadata: document exceeds region size")

// WriteInto marshals doc and copies it, NUL-terminated, into region.
// region's length is the fixed metadataSize; on ErrTooLarge region is left
// unmodified.
func WriteInto(region []byte, doc Document) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("metadata: marshal: %w", err)
	}

	// json.Encoder.Encode appends a trailing newline; keep it, then add NUL.
	if buf.Len()+1 > len(region) {
		return ErrTooLarge
	}
	copy(region, buf.B)
	for i := buf.Len(); i < len(region); i++ {
		region[i] = 0
	}
	return nil
}

// ReadFrom parses the NUL-terminated JSON document out of region,
// tolerating missing optional fields. It never panics on malformed input;
// callers are expected to route a non-nil error to the diagnostic sink
// (spec §7) rather than fail the read path.
func ReadFrom(region []byte) (Document, error) {
	end := bytes.IndexByte(region, 0)
	if end < 0 {
		end = len(region)
	}
	var doc Document
	if err := json.Unmarshal(region[:end], &doc); err != nil {
		return Document{}, fmt.Errorf("metadata: unmarshal: %w", err)
	}
	return doc, nil
}
