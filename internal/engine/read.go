package engine

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ultraframe/shmring/internal/diag"
	"github.com/ultraframe/shmring/internal/frame"
	"github.com/ultraframe/shmring/internal/status"
)

// Frame is a reader's view over one published slot. Data aliases the
// mapped segment (spec §9 Design Notes "pointer-into-mapping handles"): it
// is valid only until the producer overwrites this slot, i.e. until
// writeIndex advances past Header.SequenceNumber + N. Callers needing a
// longer-lived copy must copy Data themselves before returning control to
// the engine.
type Frame struct {
	Header frame.Header
	Data   []byte
}

const nextPollInterval = 2 * time.Millisecond

// ReadLatestFrame implements spec §4.4's latest-frame read: it never
// advances readIndex, so any number of latest-frame readers may coexist.
func (e *Engine) ReadLatestFrame() (Frame, error) {
	start := time.Now()

	writeIndex := e.control.WriteIndex()
	if writeIndex == 0 {
		return Frame{}, status.New(status.BufferEmpty, nil)
	}
	latest := writeIndex - 1

	fr, ok := e.readSlotValidated(latest)
	if !ok {
		// Re-validate against the now-current writeIndex once, per
		// SPEC_FULL.md's resolution of the "readLatestFrame... without
		// verifying that the slot has not since been overwritten"
		// open question.
		writeIndex = e.control.WriteIndex()
		if writeIndex == 0 {
			return Frame{}, status.New(status.BufferEmpty, nil)
		}
		latest = writeIndex - 1
		fr, ok = e.readSlotValidated(latest)
		if !ok {
			diag.Record(diag.Event{Kind: diag.KindStaleSequence, Segment: e.cfg.Name,
				Detail: fmt.Sprintf("slot %d overwritten during readLatestFrame retry", latest%e.ring.Layout.N)})
			return Frame{}, status.New(status.InternalError, fmt.Errorf("slot overwritten while reading"))
		}
	}

	e.stats.RecordRead(time.Since(start))
	return fr, nil
}

// readSlotValidated reads slot index's header and pixel bytes, then
// confirms the slot's stored sequenceNumber still equals index (spec §4.4
// "Tie-break & edge cases"): if it doesn't, the producer has wrapped past
// this slot mid-read and the caller should retry against a fresher index.
func (e *Engine) readSlotValidated(index uint64) (Frame, bool) {
	hdrBytes := e.ring.HeaderBytes(index)
	h := frame.Decode(hdrBytes)
	data := e.ring.PixelRegion(index)[:h.DataSize]

	if frame.SequenceAt(e.ring.HeaderBytes(index)) != index {
		return Frame{}, false
	}
	return Frame{Header: h, Data: data}, true
}

// ReadNextFrame implements spec §4.4's sequential next-frame read. It
// assumes a single sequential reader per segment (spec §5); concurrent
// callers racing this method on the same Engine must add their own
// coordination.
func (e *Engine) ReadNextFrame(wait time.Duration) (Frame, error) {
	start := time.Now()

	readIndex := e.control.ReadIndex()
	writeIndex := e.control.WriteIndex()

	if readIndex >= writeIndex {
		if wait == 0 {
			return Frame{}, status.New(status.BufferEmpty, nil)
		}
		var ok bool
		writeIndex, ok = e.waitForData(readIndex, wait)
		if !ok {
			return Frame{}, status.New(status.Timeout, fmt.Errorf("no frame within %s", wait))
		}
	}

	fr, valid := e.readSlotValidated(readIndex)
	if !valid {
		diag.Record(diag.Event{Kind: diag.KindStaleSequence, Segment: e.cfg.Name,
			Detail: fmt.Sprintf("slot %d overwritten before sequential read caught up", readIndex%e.ring.Layout.N)})
		writeIndex = e.control.WriteIndex()
		readIndex = writeIndex - 1
		e.control.SetReadIndex(readIndex)
		fr, valid = e.readSlotValidated(readIndex)
		if !valid {
			return Frame{}, status.New(status.InternalError, fmt.Errorf("could not resynchronize after stale sequence"))
		}
	}

	now := time.Now().UnixNano()
	e.control.SetReadIndex(readIndex + 1)
	pending := e.control.WriteIndex() - (readIndex + 1)
	e.control.SetFrameCount(pending)
	e.control.SetLastReadTime(now)
	e.control.IncTotalFramesRead()

	e.stats.RecordRead(time.Since(start))
	return fr, nil
}

// waitForData sleep-polls writeIndex in nextPollInterval increments until
// it advances past readIndex or wait elapses (spec §4.4 step 2).
func (e *Engine) waitForData(readIndex uint64, wait time.Duration) (uint64, bool) {
	var writeIndex uint64
	maxTries := uint64(wait / nextPollInterval)
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(nextPollInterval), maxTries)
	err := backoff.Retry(func() error {
		writeIndex = e.control.WriteIndex()
		if readIndex < writeIndex {
			return nil
		}
		return fmt.Errorf("no new data")
	}, b)
	return writeIndex, err == nil
}
