package shmring

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, name string) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Size = 1 << 20
	cfg.Backend = BackendFile
	cfg.FilePath = filepath.Join(t.TempDir(), name)
	cfg.MaxFrameSize = 4096
	return cfg
}

func TestValidateRejectsMissingNameOrSize(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, Validate(cfg))

	cfg.Name = "x"
	require.Error(t, Validate(cfg))

	cfg.Size = 1 << 20
	require.NoError(t, Validate(cfg))
}

func TestOpenWriteReadRoundTrip(t *testing.T) {
	cfg := testConfig(t, "pub")
	cfg.Create = true
	producer, err := Open(cfg, nil)
	require.NoError(t, err)
	defer producer.Close()

	readerCfg := *cfg
	readerCfg.Create = false
	reader, err := Open(&readerCfg, nil)
	require.NoError(t, err)
	defer reader.Close()

	require.NoError(t, producer.WriteFrame(WriteRequest{
		FrameID: 1, Width: 4, Height: 4, BytesPerPixel: 1,
		Format: FormatYUV422, Data: []byte{1, 2, 3, 4},
	}))

	fr, err := reader.ReadNextFrame(50 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, uint64(1), fr.Header.FrameID)
	require.Equal(t, []byte{1, 2, 3, 4}, fr.Data)

	require.Equal(t, StatusOK, StatusOf(nil))
}

func TestWriteFrameOversizeErrorMatchesSentinel(t *testing.T) {
	cfg := testConfig(t, "oversize")
	cfg.Create = true
	cfg.MaxFrameSize = 128
	producer, err := Open(cfg, nil)
	require.NoError(t, err)
	defer producer.Close()

	err = producer.WriteFrame(WriteRequest{FrameID: 1, Data: make([]byte, 4096)})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSize))
	require.False(t, errors.Is(err, ErrBufferFull))
}

func TestMaxFramesMismatchRejectedAtOpen(t *testing.T) {
	cfg := testConfig(t, "maxframes")
	cfg.Create = true
	cfg.MaxFrames = 999
	_, err := Open(cfg, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSize))
}

func TestRegistryDedupesOpenByName(t *testing.T) {
	cfg := testConfig(t, "dedupe")
	cfg.Create = true
	reg := NewRegistry()

	s1, err := reg.Open(cfg, nil)
	require.NoError(t, err)
	s2, err := reg.Open(cfg, nil)
	require.NoError(t, err)
	require.Same(t, s1, s2)

	require.NoError(t, reg.Close("dedupe"))
}

func TestSegmentStateTransitions(t *testing.T) {
	cfg := testConfig(t, "lifecycle")
	cfg.Create = true
	seg, err := Open(cfg, nil)
	require.NoError(t, err)

	require.EqualValues(t, "ACTIVE", seg.State())
	require.NoError(t, seg.Close())
	require.EqualValues(t, "TORN_DOWN", seg.State())
}
