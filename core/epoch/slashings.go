package epoch

import (
	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessSlashings applies the proportional slashing penalty to every
// validator whose withdrawable epoch indicates it was slashed half a
// slashings-vector period ago: penalty is (effective_balance / increment) *
// min(ProportionalSlashingMultiplier * sum(slashings), total_balance) /
// total_balance * increment, with increment = EffectiveBalanceIncrement.
// No minimum penalty is applied here.
func ProcessSlashings(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	totalBalance := helpers.TotalActiveBalance(cfg, state)

	var totalSlashings uint64
	for _, s := range state.Slashings {
		totalSlashings += uint64(s)
	}
	adjusted := totalSlashings * cfg.ProportionalSlashingMultiplier
	if adjusted > totalBalance {
		adjusted = totalBalance
	}

	target := currentEpoch + cfg.EpochsPerSlashingsVector/2
	for idx, v := range state.Validators {
		if !v.Slashed || uint64(v.WithdrawableEpoch) != target {
			continue
		}
		increment := cfg.EffectiveBalanceIncrement
		penaltyNumerator := (uint64(v.EffectiveBalance) / increment) * adjusted
		penalty := penaltyNumerator / totalBalance * increment
		helpers.DecreaseBalance(state, uint64(idx), penalty)
	}
	return nil
}
