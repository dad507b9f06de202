package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/cache"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestCachedBeaconState_UpdateDoesNotMutateOldSnapshot(t *testing.T) {
	raw := &primitives.BeaconState{Slot: 1}
	cs := New(raw)

	old := cs.Raw()
	require.Equal(t, primitives.Slot(1), old.Slot)

	require.NoError(t, cs.Update(func(s *primitives.BeaconState) error {
		s.Slot = 2
		return nil
	}))

	require.Equal(t, primitives.Slot(1), old.Slot, "the snapshot a reader already holds must never change under it")
	require.Equal(t, primitives.Slot(2), cs.Raw().Slot)
}

func TestCachedBeaconState_UpdateErrorLeavesStateUnchanged(t *testing.T) {
	raw := &primitives.BeaconState{Slot: 5}
	cs := New(raw)

	err := cs.Update(func(s *primitives.BeaconState) error {
		s.Slot = 6
		return errors.New("mutate failed")
	})
	require.Error(t, err)
	require.Equal(t, primitives.Slot(5), cs.Raw().Slot, "a failed mutation must not publish its partial result")
}

func TestCachedBeaconState_InvalidateEffectiveBalanceCachesResetsCaches(t *testing.T) {
	cs := New(&primitives.BeaconState{})
	require.NoError(t, cs.ActiveCountCache().AddActiveCount(&cache.ActiveCountByEpoch{Epoch: 0, ActiveCount: 7}))

	got, err := cs.ActiveCountCache().ActiveCountInEpoch(0)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got)

	cs.InvalidateEffectiveBalanceCaches()
	_, err = cs.ActiveCountCache().ActiveCountInEpoch(0)
	require.ErrorIs(t, err, cache.ErrNotFound)
}
