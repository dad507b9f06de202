package epoch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/primitives"
	"github.com/lightcrest/beacon-chain/params"
)

func inactivityTestState(cfg *params.BeaconChainConfig, currentEpoch uint64, matchedTarget bool, score uint64) *primitives.BeaconState {
	v := &primitives.Validator{
		ActivationEpoch: 0,
		ExitEpoch:       primitives.Epoch(cfg.FarFutureEpoch),
	}
	var flag primitives.ParticipationFlags
	if matchedTarget {
		flag = primitives.TimelyTargetFlag
	}
	return &primitives.BeaconState{
		Slot:                       primitives.Slot(currentEpoch * cfg.SlotsPerEpoch),
		Validators:                 []*primitives.Validator{v},
		PreviousEpochParticipation: []primitives.ParticipationFlags{flag},
		InactivityScores:           []uint64{score},
		FinalizedCheckpoint:        &primitives.Checkpoint{Epoch: primitives.Epoch(currentEpoch)},
	}
}

func TestProcessInactivityUpdates_SkipsGenesisEpoch(t *testing.T) {
	cfg := params.MinimalConfig()
	st := inactivityTestState(cfg, 0, false, 5)
	require.NoError(t, ProcessInactivityUpdates(cfg, st))
	require.Equal(t, uint64(5), st.InactivityScores[0], "epoch processing never runs inactivity updates at genesis")
}

func TestProcessInactivityUpdates_DecaysOnMatchWhenNotLeaking(t *testing.T) {
	cfg := params.MinimalConfig()
	currentEpoch := uint64(1)
	st := inactivityTestState(cfg, currentEpoch, true, 10)

	require.NoError(t, ProcessInactivityUpdates(cfg, st))
	require.Equal(t, uint64(0), st.InactivityScores[0])
}

func TestProcessInactivityUpdates_GrowsOnMissWhenLeaking(t *testing.T) {
	cfg := params.MinimalConfig()
	currentEpoch := cfg.MinEpochsToInactivityPenalty + 5
	st := inactivityTestState(cfg, currentEpoch, false, 0)
	st.FinalizedCheckpoint = &primitives.Checkpoint{Epoch: 0}

	require.NoError(t, ProcessInactivityUpdates(cfg, st))
	require.Equal(t, cfg.InactivityScoreBias, st.InactivityScores[0],
		"a validator that misses target while the chain is leaking accrues the bias with no recovery decay")
}
