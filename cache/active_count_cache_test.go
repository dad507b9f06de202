package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActiveCountCache_MissThenHit(t *testing.T) {
	c := NewActiveCountCache()

	_, err := c.ActiveCountInEpoch(3)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.AddActiveCount(&ActiveCountByEpoch{Epoch: 3, ActiveCount: 42}))

	got, err := c.ActiveCountInEpoch(3)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got)
}

func TestActiveCountCache_EvictsBeyondCapacity(t *testing.T) {
	c := NewActiveCountCache()
	for epoch := uint64(0); epoch < maxCachedEpochs+2; epoch++ {
		require.NoError(t, c.AddActiveCount(&ActiveCountByEpoch{Epoch: epoch, ActiveCount: epoch}))
	}
	_, err := c.ActiveCountInEpoch(0)
	require.ErrorIs(t, err, ErrNotFound, "oldest entry should have been evicted")

	got, err := c.ActiveCountInEpoch(maxCachedEpochs + 1)
	require.NoError(t, err)
	require.Equal(t, uint64(maxCachedEpochs+1), got)
}
