package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ultraframe/shmring/internal/control"
)

func TestLivenessFailsBeforeActive(t *testing.T) {
	block := control.New(make([]byte, control.Size))
	block.Init(0, 0)

	c := New("seg", block)
	require.Error(t, c.Heartbeat())
	alive, err := c.LivenessCheck()
	require.False(t, alive)
	require.Error(t, err)
}

func TestLivenessSucceedsOnceActive(t *testing.T) {
	block := control.New(make([]byte, control.Size))
	block.Init(0, 0)
	block.SetActive(true)

	c := New("seg", block)
	require.NoError(t, c.Heartbeat())
	alive, err := c.LivenessCheck()
	require.True(t, alive)
	require.NoError(t, err)
}

func TestReadinessFailsWithoutAnyWrite(t *testing.T) {
	block := control.New(make([]byte, control.Size))
	block.Init(0, 0)
	block.SetActive(true)

	c := New("seg", block)
	require.Error(t, c.readinessCheck())
}

func TestReadinessFailsWhenStale(t *testing.T) {
	block := control.New(make([]byte, control.Size))
	block.Init(0, 0)
	block.SetActive(true)
	block.SetLastWriteTime(time.Now().Add(-2 * StaleAfter).UnixNano())

	c := New("seg", block)
	require.Error(t, c.readinessCheck())
}

func TestReadinessSucceedsWithRecentWrite(t *testing.T) {
	block := control.New(make([]byte, control.Size))
	block.Init(0, 0)
	block.SetActive(true)
	block.SetLastWriteTime(time.Now().UnixNano())

	c := New("seg", block)
	require.NoError(t, c.readinessCheck())
}
