package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ultraframe/shmring/internal/frame"
	"github.com/ultraframe/shmring/internal/segment"
	"github.com/ultraframe/shmring/internal/status"
)

// testConfig returns a Config backed by a memory-mapped file in a temp
// directory rather than /dev/shm, so these tests run under any CI sandbox
// regardless of shared-memory permissions (SPEC_FULL.md §9.4).
func testConfig(t *testing.T, name string, size, slotHint int, dropWhenFull bool) Config {
	path := filepath.Join(t.TempDir(), name)
	return Config{
		Name:         name,
		Size:         size,
		Backend:      segment.BackendFile,
		FilePath:     path,
		MaxFrameSize: slotHint,
		MetadataSize: 512,
		DropWhenFull: dropWhenFull,
		AttachWait:   200 * time.Millisecond,
	}
}

func mustOpen(t *testing.T, cfg Config, create bool) *Engine {
	cfg.Create = create
	e, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// Scenario 1: single-producer, single-reader round trip.
func TestSingleProducerSingleReaderRoundTrip(t *testing.T) {
	cfg := testConfig(t, "t1", 1<<20, 8192, true)
	producer := mustOpen(t, cfg, true)

	pixels := make([]byte, 4096)
	for i := range pixels {
		pixels[i] = 0xAB
	}

	err := producer.WriteFrame(WriteRequest{
		FrameID: 42, Width: 64, Height: 32, BytesPerPixel: 2,
		Format: frame.FormatYUV422, Data: pixels,
	})
	require.NoError(t, err)

	reader := mustOpen(t, cfg, false)
	fr, err := reader.ReadNextFrame(50 * time.Millisecond)
	require.NoError(t, err)

	require.Equal(t, uint64(42), fr.Header.FrameID)
	require.Equal(t, uint32(64), fr.Header.Width)
	require.Equal(t, uint32(32), fr.Header.Height)
	require.Equal(t, uint32(2), fr.Header.BytesPerPixel)
	require.Equal(t, uint32(len(pixels)), fr.Header.DataSize)
	require.Equal(t, frame.FormatYUV422, fr.Header.FormatCode)
	require.Equal(t, uint64(0), fr.Header.SequenceNumber)
	require.Equal(t, pixels, fr.Data)

	require.Equal(t, uint64(1), producer.control.TotalFramesWritten())
	require.Equal(t, uint64(1), reader.control.TotalFramesRead())
	require.Equal(t, uint64(1), reader.control.ReadIndex())
}

// Scenario 2: buffer fills with drop-when-full.
func TestBufferFillsWithDropWhenFull(t *testing.T) {
	// dataOffset = control.Size(128) + metadata(512) = 640; slotSize=256
	// gives N = floor((S-640)/256); pick S so N == 4 exactly.
	const slotSize = 256
	const dataOffset = 128 + 512
	size := dataOffset + 4*slotSize
	cfg := testConfig(t, "t2", size, slotSize, true)
	producer := mustOpen(t, cfg, true)
	require.Equal(t, uint64(4), producer.Layout().N)

	for i := 0; i < 4; i++ {
		err := producer.WriteFrame(WriteRequest{FrameID: uint64(i), Data: []byte{1, 2, 3}})
		require.NoError(t, err)
	}

	err := producer.WriteFrame(WriteRequest{FrameID: 4, Data: []byte{1, 2, 3}})
	require.Error(t, err)
	require.Equal(t, status.BufferFull, status.Of(err))
	require.Equal(t, uint64(1), producer.control.DroppedFrames())
}

// Scenario 3: buffer fills with overwrite policy.
func TestBufferFillsWithOverwritePolicy(t *testing.T) {
	const slotSize = 256
	const dataOffset = 128 + 512
	size := dataOffset + 4*slotSize
	cfg := testConfig(t, "t3", size, slotSize, false)
	producer := mustOpen(t, cfg, true)
	require.Equal(t, uint64(4), producer.Layout().N)

	for i := 0; i < 6; i++ {
		err := producer.WriteFrame(WriteRequest{FrameID: uint64(i), Data: []byte{byte(i)}})
		require.NoError(t, err)
	}

	require.Equal(t, uint64(2), producer.control.ReadIndex())
	require.Equal(t, uint64(2), producer.control.DroppedFrames())

	fr, err := producer.ReadNextFrame(0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), fr.Header.SequenceNumber)
	require.Equal(t, uint64(2), fr.Header.FrameID)
}

// Scenario 4: timeout waiter.
func TestWriteFrameTimeoutOnFullBuffer(t *testing.T) {
	const slotSize = 256
	const dataOffset = 128 + 512
	size := dataOffset + 2*slotSize
	cfg := testConfig(t, "t4", size, slotSize, true)
	producer := mustOpen(t, cfg, true)

	for i := 0; i < 2; i++ {
		require.NoError(t, producer.WriteFrame(WriteRequest{FrameID: uint64(i), Data: []byte{1}}))
	}

	start := time.Now()
	err := producer.WriteFrameTimeout(WriteRequest{FrameID: 9, Data: []byte{1}}, 50*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Equal(t, status.BufferFull, status.Of(err))
	require.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
	require.Equal(t, uint64(1), producer.control.DroppedFrames())
}

// Scenario 5: empty-reader wait.
func TestReadNextFrameWaitsForPublication(t *testing.T) {
	cfg := testConfig(t, "t5", 1<<20, 4096, true)
	producer := mustOpen(t, cfg, true)
	reader := mustOpen(t, cfg, false)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = producer.WriteFrame(WriteRequest{FrameID: 1, Data: []byte{7, 7}})
	}()

	start := time.Now()
	fr, err := reader.ReadNextFrame(30 * time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, uint64(1), fr.Header.FrameID)
	require.Less(t, elapsed, 25*time.Millisecond)
	require.Equal(t, uint64(1), reader.control.ReadIndex())
}

// Scenario 6: cross-attach geometry.
func TestCrossAttachGeometryMatchesProducer(t *testing.T) {
	cfg := testConfig(t, "t6", 64<<20, 8<<20, true)
	cfg.EnableMetadata = true
	producer := mustOpen(t, cfg, true)
	reader := mustOpen(t, cfg, false)

	require.Equal(t, producer.Layout().N, reader.Layout().N)
	require.Equal(t, producer.Layout().SlotSize, reader.Layout().SlotSize)
	require.Equal(t, producer.Layout().DataOffset, reader.Layout().DataOffset)

	doc, err := reader.GetMetadata()
	require.NoError(t, err)
	require.Equal(t, producer.Layout().N, doc.MaxFrames)
	require.Equal(t, producer.Layout().SlotSize, doc.FrameSlotSize)
	require.Equal(t, producer.Layout().DataOffset, doc.DataOffset)
}

func TestReadLatestFrameDoesNotAdvanceReadIndex(t *testing.T) {
	cfg := testConfig(t, "t7", 1<<20, 4096, true)
	producer := mustOpen(t, cfg, true)

	require.NoError(t, producer.WriteFrame(WriteRequest{FrameID: 1, Data: []byte{1}}))
	require.NoError(t, producer.WriteFrame(WriteRequest{FrameID: 2, Data: []byte{2}}))

	fr1, err := producer.ReadLatestFrame()
	require.NoError(t, err)
	fr2, err := producer.ReadLatestFrame()
	require.NoError(t, err)

	require.Equal(t, fr1.Header, fr2.Header)
	require.Equal(t, uint64(2), fr1.Header.FrameID)
	require.Equal(t, uint64(0), producer.control.ReadIndex())
}

func TestReadLatestFrameOnEmptyBufferReturnsBufferEmpty(t *testing.T) {
	cfg := testConfig(t, "t8", 1<<20, 4096, true)
	producer := mustOpen(t, cfg, true)

	_, err := producer.ReadLatestFrame()
	require.Error(t, err)
	require.Equal(t, status.BufferEmpty, status.Of(err))
}

func TestWriteFrameRejectsOversizeData(t *testing.T) {
	cfg := testConfig(t, "t9", 1<<20, 256, true)
	producer := mustOpen(t, cfg, true)

	err := producer.WriteFrame(WriteRequest{FrameID: 1, Data: make([]byte, 1<<20)})
	require.Error(t, err)
	require.Equal(t, status.InvalidSize, status.Of(err))
}

func TestNotificationWatcherDeliversFramesInOrder(t *testing.T) {
	cfg := testConfig(t, "t10", 1<<20, 4096, true)
	producer := mustOpen(t, cfg, true)
	reader := mustOpen(t, cfg, false)

	received := make(chan uint64, 8)
	id, err := reader.RegisterNotification(func(fr Frame) {
		received <- fr.Header.FrameID
	})
	require.NoError(t, err)
	defer reader.UnregisterNotification(id)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, producer.WriteFrame(WriteRequest{FrameID: i, Data: []byte{byte(i)}}))
	}

	for i := uint64(1); i <= 3; i++ {
		select {
		case got := <-received:
			require.Equal(t, i, got)
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
}

func TestAttachTimesOutWhenNeverActivated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t11")
	// Create the backing file through Open, then clear the active flag
	// before any attacher runs, so the attacher never observes active=true.
	creator := mustOpen(t, Config{
		Name: "t11-setup", Size: 1 << 20, Backend: segment.BackendFile,
		FilePath: path, MaxFrameSize: 4096, MetadataSize: 512, AttachWait: 200 * time.Millisecond,
	}, true)
	creator.control.SetActive(false)

	cfg := Config{
		Name: "t11", Size: 1 << 20, Backend: segment.BackendFile,
		FilePath: path, MetadataSize: 512, AttachWait: 30 * time.Millisecond,
	}
	_, err := Open(cfg, nil)
	require.Error(t, err)
	require.Equal(t, status.InternalError, status.Of(err))
}
