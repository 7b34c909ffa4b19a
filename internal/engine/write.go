package engine

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/cenkalti/backoff/v4"

	"github.com/ultraframe/shmring/internal/frame"
	"github.com/ultraframe/shmring/internal/metadata"
	"github.com/ultraframe/shmring/internal/status"
)

// WriteRequest is the producer's description of one frame to publish.
type WriteRequest struct {
	FrameID       uint64
	Width         uint32
	Height        uint32
	BytesPerPixel uint32
	Format        frame.FormatCode
	Flags         frame.Flags
	Data          []byte
}

const fullPollInterval = 1 * time.Millisecond

// WriteFrame publishes req with no wait for space: drop-when-full returns
// BUFFER_FULL immediately, overwrite-on-full always succeeds. Equivalent to
// WriteFrameTimeout(req, 0).
func (e *Engine) WriteFrame(req WriteRequest) error {
	return e.WriteFrameTimeout(req, 0)
}

// WriteFrameTimeout implements spec §4.4's publication algorithm, steps
// 1-8, including the three-way fullness policy of step 2.
func (e *Engine) WriteFrameTimeout(req WriteRequest, timeout time.Duration) error {
	start := time.Now()

	writeIndex := e.control.WriteIndex()
	readIndex := e.control.ReadIndex()
	pending := writeIndex - readIndex

	if pending >= e.ring.Layout.N {
		switch {
		case timeout == 0 && e.cfg.DropWhenFull:
			e.control.IncDroppedFrames()
			e.stats.RecordDrop()
			return status.New(status.BufferFull, nil)
		case timeout > 0:
			waited, ok := e.waitForSpace(timeout)
			if !ok {
				e.control.IncDroppedFrames()
				e.stats.RecordDrop()
				return status.New(status.BufferFull, fmt.Errorf("no space after %s", waited))
			}
			readIndex = e.control.ReadIndex()
		default:
			// Overwrite-on-full "ring" mode: advance readIndex past the
			// oldest slot ourselves, since we are the single writer.
			e.control.SetReadIndex(readIndex + 1)
			readIndex++
			e.control.IncDroppedFrames()
			e.stats.RecordOverwrite()
		}
	}

	slot := e.ring.Slot(writeIndex)
	if int(frame.HeaderSize)+len(req.Data) > len(slot) {
		return status.New(status.InvalidSize,
			fmt.Errorf("frame data %d bytes exceeds slot payload capacity %d", len(req.Data), e.ring.MaxDataSize()))
	}

	flags := req.Flags
	pixelRegion := e.ring.PixelRegion(writeIndex)
	if aliasesSegment(req.Data, e.region.Bytes()) {
		flags |= frame.FlagInPlace
	} else {
		copy(pixelRegion, req.Data)
	}

	now := time.Now().UnixNano()
	frame.Encode(e.ring.HeaderBytes(writeIndex), frame.Header{
		FrameID:        req.FrameID,
		Timestamp:      uint64(now),
		Width:          req.Width,
		Height:         req.Height,
		BytesPerPixel:  req.BytesPerPixel,
		DataSize:       uint32(len(req.Data)),
		FormatCode:     req.Format,
		Flags:          flags,
		SequenceNumber: writeIndex,
	})

	if e.cfg.EnableMetadata {
		_ = e.SetMetadata(func(doc *metadata.Document) {
			doc.LastFrame = &metadata.LastFrame{
				FrameID:        req.FrameID,
				SequenceNumber: writeIndex,
				Width:          req.Width,
				Height:         req.Height,
				Format:         req.Format.String(),
				DataSize:       uint32(len(req.Data)),
				TimestampNS:    now,
			}
		})
	}

	e.control.SetWriteIndex(writeIndex + 1)
	e.control.IncTotalFramesWritten()
	e.control.SetFrameCount(writeIndex + 1 - readIndex)
	e.control.SetLastWriteTime(now)

	e.stats.RecordWrite(time.Since(start), uint64(len(req.Data)), writeIndex+1-readIndex)
	e.watchers.notifyAll()
	return nil
}

// waitForSpace sleep-polls in fullPollInterval increments until readIndex
// advances enough to admit a write, or timeout elapses (spec §4.4 step 2,
// §5 "bounded... implemented by short sleeps, not kernel condition
// variables").
func (e *Engine) waitForSpace(timeout time.Duration) (time.Duration, bool) {
	start := time.Now()
	maxTries := uint64(timeout / fullPollInterval)
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(fullPollInterval), maxTries)
	err := backoff.Retry(func() error {
		writeIndex := e.control.WriteIndex()
		readIndex := e.control.ReadIndex()
		if writeIndex-readIndex < e.ring.Layout.N {
			return nil
		}
		return fmt.Errorf("still full")
	}, b)
	return time.Since(start), err == nil
}

// aliasesSegment reports whether data's backing array lies within seg,
// i.e. the caller already wrote pixel bytes directly into this segment's
// mapping (spec §4.4 step 5, §9 Design Notes "the fallback copy to remain
// correct" — this check must be conservative: any uncertainty falls
// through to the copy).
func aliasesSegment(data, seg []byte) bool {
	if len(data) == 0 || len(seg) == 0 {
		return false
	}
	dp := uintptr(unsafe.Pointer(&data[0]))
	sp := uintptr(unsafe.Pointer(&seg[0]))
	return dp >= sp && dp+uintptr(len(data)) <= sp+uintptr(len(seg))
}
