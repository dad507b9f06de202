package epoch

import (
	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

var flagWeights = []struct {
	flag   primitives.ParticipationFlags
	weight func(*params.BeaconChainConfig) uint64
}{
	{primitives.TimelySourceFlag, func(c *params.BeaconChainConfig) uint64 { return c.TimelySourceWeight }},
	{primitives.TimelyTargetFlag, func(c *params.BeaconChainConfig) uint64 { return c.TimelyTargetWeight }},
	{primitives.TimelyHeadFlag, func(c *params.BeaconChainConfig) uint64 { return c.TimelyHeadWeight }},
}

// ProcessRewardsAndPenalties grants per-flag rewards (source, target, head)
// to validators who matched each condition in the previous epoch, and
// applies the inactivity penalty, scaled by each validator's inactivity
// score, to validators who did not match target, whether or not an
// inactivity leak is active. At genesis this step is a no-op: the
// canonical spec has no previous epoch to reward.
//
// Balances are mutated via the saturating helpers.IncreaseBalance/
// DecreaseBalance, and all deltas for the epoch are computed before any
// balance is written, matching the source's "single bulk rebuild, not a
// per-validator mutation" performance requirement.
func ProcessRewardsAndPenalties(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	if currentEpoch == uint64(cfg.GenesisEpoch) {
		return nil
	}
	prevEpoch := helpers.PrevEpoch(cfg, uint64(state.Slot))
	totalActive := helpers.TotalActiveBalance(cfg, state)
	totalActiveSqrt := helpers.IntegerSqrt(totalActive)
	inLeak := isInactivityLeak(cfg, state, currentEpoch)

	indices, err := helpers.ActiveValidatorIndices(state, prevEpoch, nil)
	if err != nil {
		return err
	}

	type delta struct {
		reward, penalty uint64
	}
	deltas := make(map[uint64]delta, len(indices))

	for _, fw := range flagWeights {
		flagBalance, err := unslashedParticipatingBalance(cfg, state, state.PreviousEpochParticipation, fw.flag, prevEpoch)
		if err != nil {
			return err
		}
		weight := fw.weight(cfg)
		for _, idx := range indices {
			v := state.Validators[idx]
			base := helpers.BaseReward(cfg, uint64(v.EffectiveBalance), totalActiveSqrt)
			matched := int(idx) < len(state.PreviousEpochParticipation) && state.PreviousEpochParticipation[idx]&fw.flag != 0
			d := deltas[idx]
			if matched {
				if !inLeak {
					d.reward += base * weight * (flagBalance / cfg.EffectiveBalanceIncrement) / (totalActive / cfg.EffectiveBalanceIncrement) / cfg.WeightDenominator
				}
			} else if fw.flag != primitives.TimelyHeadFlag {
				d.penalty += base * weight / cfg.WeightDenominator
			}
			deltas[idx] = d
		}
	}

	// Inactivity penalty: applied on top of the per-flag deltas above,
	// scaled by the validator's own accumulated inactivity score, and only
	// to validators who missed the previous epoch's target.
	for _, idx := range indices {
		matchedTarget := int(idx) < len(state.PreviousEpochParticipation) &&
			state.PreviousEpochParticipation[idx]&primitives.TimelyTargetFlag != 0
		if matchedTarget {
			continue
		}
		v := state.Validators[idx]
		d := deltas[idx]
		penaltyNumerator := uint64(v.EffectiveBalance) * state.InactivityScores[idx]
		d.penalty += penaltyNumerator / (cfg.InactivityScoreBias * cfg.InactivityPenaltyQuotient)
		deltas[idx] = d
	}

	for idx, d := range deltas {
		if d.reward > 0 {
			helpers.IncreaseBalance(state, idx, d.reward)
		}
		if d.penalty > 0 {
			helpers.DecreaseBalance(state, idx, d.penalty)
		}
	}
	return nil
}
