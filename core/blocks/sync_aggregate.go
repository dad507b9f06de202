package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessSyncAggregate verifies the sync committee's aggregate signature
// over the previous slot's block root, and credits the proposer and each
// participating committee member; non-participants are not penalized here
// (that only happens through the inactivity-score mechanism).
func ProcessSyncAggregate(cfg *params.BeaconChainConfig, state *primitives.BeaconState, agg *primitives.SyncAggregate, verifySignature bool) error {
	committee := state.CurrentSyncCommittee
	if committee == nil {
		return errors.New("no current sync committee")
	}
	if agg.SyncCommitteeBits.Len() != uint64(len(committee.Pubkeys)) {
		return errors.New("sync committee bits length mismatch")
	}

	var participantPubs []*bls.PublicKey
	var participantIdx []int
	for i, pk := range committee.Pubkeys {
		if !agg.SyncCommitteeBits.BitAt(uint64(i)) {
			continue
		}
		pub, err := bls.PublicKeyFromBytes(pk)
		if err != nil {
			return err
		}
		participantPubs = append(participantPubs, pub)
		participantIdx = append(participantIdx, i)
	}

	if verifySignature && len(participantPubs) > 0 {
		prevSlot := uint64(state.Slot)
		if prevSlot > 0 {
			prevSlot--
		}
		rootIdx := prevSlot % cfg.SlotsPerHistoricalRoot
		blockRoot := state.BlockRoots[rootIdx]
		domain := helpers.Domain(state.Fork, helpers.CurrentEpoch(cfg, uint64(state.Slot)), cfg.DomainSyncCommittee)
		root, err := signingRootWithDomain(rootWrapper(blockRoot), domain)
		if err != nil {
			return err
		}
		sig, err := bls.SignatureFromBytes(agg.SyncCommitteeSignature)
		if err != nil {
			return err
		}
		if !bls.FastAggregateVerify(participantPubs, root[:], sig) {
			return errors.New("invalid sync committee aggregate signature")
		}
	}

	proposerIdx, err := helpers.BeaconProposerIndex(cfg, state, nil)
	if err != nil {
		return err
	}
	totalActiveSqrt := helpers.IntegerSqrt(helpers.TotalActiveBalance(cfg, state))
	participantReward := helpers.BaseReward(cfg, cfg.MaxEffectiveBalance, totalActiveSqrt) * cfg.SyncRewardWeight / cfg.WeightDenominator / uint64(len(committee.Pubkeys))
	var proposerCredit uint64
	for _, i := range participantIdx {
		for vi, v := range state.Validators {
			if bytes.Equal(v.PublicKey, committee.Pubkeys[i]) {
				helpers.IncreaseBalance(state, uint64(vi), participantReward)
				break
			}
		}
		proposerCredit += participantReward / cfg.ProposerWeight
	}
	if proposerCredit > 0 {
		helpers.IncreaseBalance(state, proposerIdx, proposerCredit)
	}
	return nil
}

type rootWrapper []byte

func (r rootWrapper) HashTreeRoot() ([32]byte, error) {
	var out [32]byte
	copy(out[:], r)
	return out, nil
}
