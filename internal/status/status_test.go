package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesByStatusIgnoringCause(t *testing.T) {
	err := New(BufferFull, fmt.Errorf("ring at capacity"))
	require.True(t, errors.Is(err, ErrBufferFull))
	require.False(t, errors.Is(err, ErrTimeout))
}

func TestOfUnwrapsWrappedError(t *testing.T) {
	err := fmt.Errorf("attach: %w", New(Timeout, nil))
	require.Equal(t, Timeout, Of(err))
}

func TestOfReturnsInternalErrorForForeignError(t *testing.T) {
	require.Equal(t, InternalError, Of(errors.New("not ours")))
}
