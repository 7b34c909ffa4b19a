package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	closed bool
}

func (f *fakeHandle) Close() error {
	f.closed = true
	return nil
}

func TestLoadOrStoreCreatesOnlyOnce(t *testing.T) {
	r := New()
	var created int
	create := func() (Handle, error) {
		created++
		return &fakeHandle{}, nil
	}

	h1, err := r.LoadOrStore("seg", create)
	require.NoError(t, err)
	h2, err := r.LoadOrStore("seg", create)
	require.NoError(t, err)

	require.Same(t, h1, h2)
	require.Equal(t, 1, created)
	require.Equal(t, 1, r.Count())
}

func TestLoadOrStoreConcurrentCallersGetOneWinner(t *testing.T) {
	r := New()
	var created int
	var mu sync.Mutex
	create := func() (Handle, error) {
		mu.Lock()
		created++
		mu.Unlock()
		return &fakeHandle{}, nil
	}

	var wg sync.WaitGroup
	results := make([]Handle, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.LoadOrStore("seg", create)
			require.NoError(t, err)
			results[i] = h
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		require.Same(t, results[0], results[i])
	}
	require.Equal(t, 1, created)
}

func TestLoadOrStorePropagatesCreateError(t *testing.T) {
	r := New()
	wantErr := fmt.Errorf("boom")
	_, err := r.LoadOrStore("seg", func() (Handle, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 0, r.Count())
}

func TestDeleteStopsTrackingWithoutClosing(t *testing.T) {
	r := New()
	h := &fakeHandle{}
	_, err := r.LoadOrStore("seg", func() (Handle, error) { return h, nil })
	require.NoError(t, err)

	r.Delete("seg")
	require.Equal(t, 0, r.Count())
	require.False(t, h.closed)
}
