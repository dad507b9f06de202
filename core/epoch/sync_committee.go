package epoch

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessSyncCommitteeUpdates rotates the sync committee at the boundary of
// each sync-committee period: the next committee becomes current, and a
// fresh next committee is derived from the active-validator set, sampled
// weighted by effective balance the same way proposer selection is.
func ProcessSyncCommitteeUpdates(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	nextEpoch := helpers.NextEpoch(cfg, uint64(state.Slot))
	if nextEpoch%cfg.EpochsPerSyncCommitteePeriod != 0 {
		return nil
	}
	state.CurrentSyncCommittee = state.NextSyncCommittee
	next, err := computeSyncCommittee(cfg, state, nextEpoch+cfg.EpochsPerSyncCommitteePeriod)
	if err != nil {
		return errors.Wrap(err, "could not compute next sync committee")
	}
	state.NextSyncCommittee = next
	return nil
}

func computeSyncCommittee(cfg *params.BeaconChainConfig, state *primitives.BeaconState, epoch uint64) (*primitives.SyncCommittee, error) {
	indices, err := helpers.ActiveValidatorIndices(state, epoch, nil)
	if err != nil {
		return nil, err
	}
	seed, err := helpers.Seed(cfg, state, epoch, cfg.DomainSyncCommittee)
	if err != nil {
		return nil, err
	}

	const maxRandomByte = uint64(1<<8 - 1)
	length := uint64(len(indices))

	pubkeys := make([][]byte, 0, cfg.SyncCommitteeSize)
	i := uint64(0)
	for uint64(len(pubkeys)) < cfg.SyncCommitteeSize {
		candidate, err := helpers.ComputeShuffledIndex(i%length, length, seed, true)
		if err != nil {
			return nil, err
		}
		idx := indices[candidate]
		v := state.Validators[idx]

		ib := make([]byte, 8)
		binary.LittleEndian.PutUint64(ib, i/32)
		b := append(append([]byte{}, seed[:]...), ib...)
		randomByte := uint64(hashutil.Hash(b)[i%32])
		effectiveBal := uint64(v.EffectiveBalance)
		if effectiveBal*maxRandomByte >= cfg.MaxEffectiveBalance*randomByte {
			pubkeys = append(pubkeys, v.PublicKey)
		}
		i++
		if i > length*256 {
			return nil, errors.New("could not sample sync committee within bound")
		}
	}
	return &primitives.SyncCommittee{Pubkeys: pubkeys}, nil
}
