// Package helpers implements the pure arithmetic and lookup functions the
// state-transition engine and fork-choice store build on: slot/epoch
// conversion, validator predicates, committee shuffling, seed derivation,
// and balance arithmetic.
package helpers

import "github.com/lightcrest/beacon-chain/params"

// SlotToEpoch returns the epoch number of the given slot.
func SlotToEpoch(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	return slot / cfg.SlotsPerEpoch
}

// CurrentEpoch returns the epoch number of state.Slot.
func CurrentEpoch(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	return SlotToEpoch(cfg, slot)
}

// PrevEpoch returns the previous epoch, or the genesis epoch if the current
// epoch is already genesis (underflow guard).
func PrevEpoch(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	current := CurrentEpoch(cfg, slot)
	if current > cfg.GenesisEpoch {
		return current - 1
	}
	return cfg.GenesisEpoch
}

// NextEpoch returns the epoch following slot's epoch.
func NextEpoch(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	return SlotToEpoch(cfg, slot) + 1
}

// StartSlot returns the first slot of epoch.
func StartSlot(cfg *params.BeaconChainConfig, epoch uint64) uint64 {
	return epoch * cfg.SlotsPerEpoch
}

// IsEpochStart reports whether slot is the first slot of an epoch.
func IsEpochStart(cfg *params.BeaconChainConfig, slot uint64) bool {
	return slot%cfg.SlotsPerEpoch == 0
}

// IsEpochEnd reports whether slot is the last slot of an epoch.
func IsEpochEnd(cfg *params.BeaconChainConfig, slot uint64) bool {
	return IsEpochStart(cfg, slot+1)
}

// ActivationExitEpoch returns the epoch during which validator activations
// and exits initiated in epoch take effect.
func ActivationExitEpoch(cfg *params.BeaconChainConfig, epoch uint64) uint64 {
	return epoch + 1 + cfg.MaxSeedLookhead
}
