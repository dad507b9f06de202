package helpers

import (
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// TotalActiveBalance sums the effective balances of validators active at
// the state's current epoch.
func TotalActiveBalance(cfg *params.BeaconChainConfig, state *primitives.BeaconState) uint64 {
	epoch := CurrentEpoch(cfg, uint64(state.Slot))
	var total uint64
	for _, v := range state.Validators {
		if IsActiveValidator(v, epoch) {
			total += uint64(v.EffectiveBalance)
		}
	}
	if total < cfg.EffectiveBalanceIncrement {
		return cfg.EffectiveBalanceIncrement
	}
	return total
}

// IncreaseBalance adds delta to the balance of validator idx.
func IncreaseBalance(state *primitives.BeaconState, idx uint64, delta uint64) {
	state.Balances[idx] += primitives.Gwei(delta)
}

// DecreaseBalance subtracts delta from the balance of validator idx,
// saturating at zero rather than underflowing.
func DecreaseBalance(state *primitives.BeaconState, idx uint64, delta uint64) {
	if delta > uint64(state.Balances[idx]) {
		state.Balances[idx] = 0
		return
	}
	state.Balances[idx] -= primitives.Gwei(delta)
}

// BaseReward returns the base reward for a validator with effectiveBalance,
// given totalActiveBalanceSqrt (the integer square root of total active
// balance, passed in so callers compute it once per epoch).
func BaseReward(cfg *params.BeaconChainConfig, effectiveBalance, totalActiveBalanceSqrt uint64) uint64 {
	if totalActiveBalanceSqrt == 0 {
		return 0
	}
	incrementsPerBalance := effectiveBalance / cfg.EffectiveBalanceIncrement
	baseRewardPerIncrement := cfg.EffectiveBalanceIncrement * cfg.BaseRewardFactor / totalActiveBalanceSqrt
	return incrementsPerBalance * baseRewardPerIncrement
}

// IntegerSqrt returns the largest integer whose square is <= n.
func IntegerSqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
