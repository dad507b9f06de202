package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestSeed_DeterministicAndMixSensitive(t *testing.T) {
	cfg := params.MinimalConfig()
	mixes := make([][]byte, cfg.EpochsPerHistoricalVector)
	for i := range mixes {
		mixes[i] = make([]byte, 32)
		mixes[i][0] = byte(i)
	}
	st := &primitives.BeaconState{RandaoMixes: mixes}

	a, err := Seed(cfg, st, 10, cfg.DomainBeaconAttester)
	require.NoError(t, err)
	b, err := Seed(cfg, st, 10, cfg.DomainBeaconAttester)
	require.NoError(t, err)
	require.Equal(t, a, b, "seed derivation must be deterministic for the same inputs")

	c, err := Seed(cfg, st, 11, cfg.DomainBeaconAttester)
	require.NoError(t, err)
	require.NotEqual(t, a, c, "seed must vary with epoch")
}

func TestSeed_OutOfRangeRandaoIndex(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{RandaoMixes: nil}

	_, err := Seed(cfg, st, 10, cfg.DomainBeaconAttester)
	require.Error(t, err)
}
