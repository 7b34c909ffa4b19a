package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitZeroesThenActiveLast(t *testing.T) {
	buf := make([]byte, Size)
	c := New(buf)
	c.Init(72, 4096)

	require.Equal(t, uint64(0), c.WriteIndex())
	require.Equal(t, uint64(0), c.ReadIndex())
	require.False(t, c.Active())
	require.Equal(t, uint64(72), c.MetadataOffset())
	require.Equal(t, uint64(4096), c.MetadataSize())

	c.SetActive(true)
	require.True(t, c.Active())
}

func TestCountersAreIndependentlyAddressable(t *testing.T) {
	buf := make([]byte, Size)
	c := New(buf)
	c.Init(0, 0)

	c.SetWriteIndex(5)
	c.IncTotalFramesWritten()
	c.IncTotalFramesWritten()
	c.IncDroppedFrames()

	require.Equal(t, uint64(5), c.WriteIndex())
	require.Equal(t, uint64(2), c.TotalFramesWritten())
	require.Equal(t, uint64(1), c.DroppedFrames())
	require.Equal(t, uint64(0), c.ReadIndex())
}

func TestTwoViewsOverSameBufferObserveEachOthersWrites(t *testing.T) {
	buf := make([]byte, Size)
	writer := New(buf)
	reader := New(buf)

	writer.Init(0, 0)
	writer.SetActive(true)
	writer.SetWriteIndex(3)

	require.True(t, reader.Active())
	require.Equal(t, uint64(3), reader.WriteIndex())
}
