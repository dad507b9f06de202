package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMainnetConfig_HasCanonicalSlotTiming(t *testing.T) {
	cfg := MainnetConfig()
	require.Equal(t, uint64(12), cfg.SecondsPerSlot)
	require.Equal(t, uint64(32), cfg.SlotsPerEpoch)
	require.Equal(t, ^uint64(0), cfg.FarFutureEpoch)
	require.Equal(t, 12*time.Second, cfg.SlotDuration())
}

func TestMinimalConfig_ShrinksEpochLengthWithoutTouchingMainnet(t *testing.T) {
	minimal := MinimalConfig()
	mainnet := MainnetConfig()

	require.Equal(t, uint64(8), minimal.SlotsPerEpoch)
	require.Equal(t, uint64(32), mainnet.SlotsPerEpoch, "building the minimal preset must not mutate the mainnet preset")
	require.Equal(t, mainnet.MaxEffectiveBalance, minimal.MaxEffectiveBalance, "only vector sizes and epoch length shrink")
}
