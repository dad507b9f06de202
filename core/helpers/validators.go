package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/cache"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// IsActiveValidator reports whether v is active at epoch.
func IsActiveValidator(v *primitives.Validator, epoch uint64) bool {
	return uint64(v.ActivationEpoch) <= epoch && epoch < uint64(v.ExitEpoch)
}

// IsSlashableValidator reports whether v can still be slashed at epoch.
func IsSlashableValidator(v *primitives.Validator, epoch uint64) bool {
	active := uint64(v.ActivationEpoch) <= epoch
	beforeWithdrawable := epoch < uint64(v.WithdrawableEpoch)
	return active && beforeWithdrawable && !v.Slashed
}

// ActiveValidatorIndices returns the indices of validators active at epoch,
// consulting activeCache first. This allocates a fresh slice and is
// expensive; callers that only need the count should use
// ActiveValidatorCount instead.
func ActiveValidatorIndices(state *primitives.BeaconState, epoch uint64, activeCache *cache.CommitteeCache) ([]uint64, error) {
	if activeCache != nil {
		if cached, err := activeCache.ActiveIndices(epoch); err == nil && cached != nil {
			return cached, nil
		}
	}
	indices := make([]uint64, 0, len(state.Validators))
	for i, v := range state.Validators {
		if IsActiveValidator(v, epoch) {
			indices = append(indices, uint64(i))
		}
	}
	if activeCache != nil {
		activeCache.AddActiveIndices(epoch, indices)
	}
	return indices, nil
}

// ActiveValidatorCount returns the number of validators active at epoch.
func ActiveValidatorCount(state *primitives.BeaconState, epoch uint64, countCache *cache.ActiveCountCache) (uint64, error) {
	if countCache != nil {
		if count, err := countCache.ActiveCountInEpoch(epoch); err == nil {
			return count, nil
		}
	}
	var count uint64
	for _, v := range state.Validators {
		if IsActiveValidator(v, epoch) {
			count++
		}
	}
	if countCache != nil {
		if err := countCache.AddActiveCount(&cache.ActiveCountByEpoch{Epoch: epoch, ActiveCount: count}); err != nil {
			return 0, errors.Wrap(err, "could not save active count for cache")
		}
	}
	return count, nil
}

// DelayedActivationExitEpoch is an alias of ActivationExitEpoch kept for
// call-site parity with the canonical spec function name.
func DelayedActivationExitEpoch(cfg *params.BeaconChainConfig, epoch uint64) uint64 {
	return ActivationExitEpoch(cfg, epoch)
}

// ValidatorChurnLimit returns the number of validators allowed to enter or
// exit the validator set in one epoch.
func ValidatorChurnLimit(cfg *params.BeaconChainConfig, activeValidatorCount uint64) uint64 {
	limit := activeValidatorCount / cfg.ChurnLimitQuotient
	if limit < cfg.MinPerEpochChurnLimit {
		limit = cfg.MinPerEpochChurnLimit
	}
	return limit
}

// BeaconProposerIndex returns the proposer index for state.Slot.
func BeaconProposerIndex(cfg *params.BeaconChainConfig, state *primitives.BeaconState, countCache *cache.ActiveCountCache) (uint64, error) {
	epoch := CurrentEpoch(cfg, uint64(state.Slot))

	seed, err := Seed(cfg, state, epoch, cfg.DomainBeaconProposer)
	if err != nil {
		return 0, errors.Wrap(err, "could not generate seed")
	}

	slotBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(slotBytes, uint64(state.Slot))
	seedWithSlot := append(append([]byte{}, seed[:]...), slotBytes...)
	seedWithSlotHash := hashutil.Hash(seedWithSlot)

	indices, err := ActiveValidatorIndices(state, epoch, nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not get active indices")
	}

	return ComputeProposerIndex(cfg, state, indices, seedWithSlotHash)
}

// ComputeProposerIndex samples from indices, weighted by effective balance,
// using seed as the source of randomness.
func ComputeProposerIndex(cfg *params.BeaconChainConfig, state *primitives.BeaconState, indices []uint64, seed [32]byte) (uint64, error) {
	length := uint64(len(indices))
	if length == 0 {
		return 0, errors.New("empty active indices list")
	}
	const maxRandomByte = uint64(1<<8 - 1)

	for i := uint64(0); ; i++ {
		candidateIndex, err := ComputeShuffledIndex(i%length, length, seed, true)
		if err != nil {
			return 0, err
		}
		candidateIndex = indices[candidateIndex]
		ib := make([]byte, 8)
		binary.LittleEndian.PutUint64(ib, i/32)
		b := append(append([]byte{}, seed[:]...), ib...)
		randomByte := uint64(hashutil.Hash(b)[i%32])
		effectiveBal := uint64(state.Validators[candidateIndex].EffectiveBalance)
		if effectiveBal*maxRandomByte >= cfg.MaxEffectiveBalance*randomByte {
			return candidateIndex, nil
		}
	}
}

// Domain returns the signature domain for a message signed during epoch,
// using fork to pick the pre- or post-fork version.
func Domain(fork *primitives.Fork, epoch uint64, domainType []byte) []byte {
	forkVersion := fork.CurrentVersion
	if epoch < uint64(fork.Epoch) {
		forkVersion = fork.PreviousVersion
	}
	return bls.Domain(domainType, forkVersion)
}
