package epoch

import (
	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessInactivityUpdates updates each validator's inactivity score: it
// decays toward zero for validators who matched the previous epoch's
// target, and grows otherwise. Outside of an inactivity leak the score
// additionally decays by the configured recovery rate, so a validator that
// is online the whole time never accumulates a penalty.
func ProcessInactivityUpdates(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	if currentEpoch == uint64(cfg.GenesisEpoch) {
		return nil
	}
	prevEpoch := helpers.PrevEpoch(cfg, uint64(state.Slot))
	inLeak := isInactivityLeak(cfg, state, currentEpoch)

	indices, err := helpers.ActiveValidatorIndices(state, prevEpoch, nil)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		matchedTarget := int(idx) < len(state.PreviousEpochParticipation) &&
			state.PreviousEpochParticipation[idx]&primitives.TimelyTargetFlag != 0
		score := state.InactivityScores[idx]
		if matchedTarget {
			if score > 0 {
				score--
			}
		} else {
			score += cfg.InactivityScoreBias
		}
		if !inLeak {
			decay := cfg.InactivityScoreRecoveryRate
			if score > decay {
				score -= decay
			} else {
				score = 0
			}
		}
		state.InactivityScores[idx] = score
	}
	return nil
}

// isInactivityLeak reports whether the chain has gone too long without
// finalizing, which suspends the inactivity-score recovery rate so
// non-participating validators are penalized harder.
func isInactivityLeak(cfg *params.BeaconChainConfig, state *primitives.BeaconState, currentEpoch uint64) bool {
	return currentEpoch-uint64(state.FinalizedCheckpoint.Epoch) > cfg.MinEpochsToInactivityPenalty
}
