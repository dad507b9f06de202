package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
)

func TestSlotEpoch_Conversions(t *testing.T) {
	cfg := params.MinimalConfig() // SlotsPerEpoch == 8

	require.Equal(t, uint64(0), SlotToEpoch(cfg, 0))
	require.Equal(t, uint64(0), SlotToEpoch(cfg, 7))
	require.Equal(t, uint64(1), SlotToEpoch(cfg, 8))
	require.Equal(t, uint64(3), CurrentEpoch(cfg, 31))

	require.Equal(t, uint64(0), PrevEpoch(cfg, 0), "genesis epoch must not underflow")
	require.Equal(t, uint64(0), PrevEpoch(cfg, 7))
	require.Equal(t, uint64(1), PrevEpoch(cfg, 16))

	require.Equal(t, uint64(2), NextEpoch(cfg, 8))

	require.Equal(t, uint64(16), StartSlot(cfg, 2))

	require.True(t, IsEpochStart(cfg, 0))
	require.True(t, IsEpochStart(cfg, 8))
	require.False(t, IsEpochStart(cfg, 1))

	require.True(t, IsEpochEnd(cfg, 7))
	require.False(t, IsEpochEnd(cfg, 6))
}

func TestActivationExitEpoch(t *testing.T) {
	cfg := params.MinimalConfig()
	require.Equal(t, cfg.MaxSeedLookhead+6, ActivationExitEpoch(cfg, 5))
}
