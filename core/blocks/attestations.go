package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessAttestations verifies and applies every attestation in the block:
// the committee is resolved, the aggregation bitfield length and signature
// are checked, and the attesting validators' participation flags are set
// (source/target/head) in the current- or previous-epoch participation
// list, whichever matches the attestation's epoch, which is how Altair-style rewards
// accrue at the following epoch boundary rather than through
// PendingAttestations records.
func ProcessAttestations(cfg *params.BeaconChainConfig, state *primitives.BeaconState, atts []*primitives.Attestation, verifySignatures bool) error {
	for i, att := range atts {
		if err := processAttestation(cfg, state, att, verifySignatures); err != nil {
			return errors.Wrapf(err, "attestation %d invalid", i)
		}
	}
	return nil
}

func processAttestation(cfg *params.BeaconChainConfig, state *primitives.BeaconState, att *primitives.Attestation, verifySignatures bool) error {
	data := att.Data
	if uint64(data.Slot)+cfg.MinSeedLookahead < uint64(state.Slot) && uint64(state.Slot) > uint64(data.Slot)+cfg.SlotsPerEpoch {
		return errors.New("attestation is too old to include")
	}
	if uint64(data.Slot) > uint64(state.Slot) {
		return errors.New("attestation slot is in the future")
	}

	epoch := helpers.SlotToEpoch(cfg, uint64(data.Slot))
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	if epoch != currentEpoch && epoch != helpers.PrevEpoch(cfg, uint64(state.Slot)) {
		return errors.New("attestation target epoch does not match current or previous epoch")
	}

	committee, err := helpers.BeaconCommittee(cfg, state, uint64(data.Slot), data.CommitteeIndex, nil)
	if err != nil {
		return errors.Wrap(err, "could not get beacon committee")
	}
	if err := helpers.VerifyBitfieldLength(att.AggregationBits, uint64(len(committee))); err != nil {
		return err
	}
	if att.AggregationBits.Count() == 0 {
		return errors.New("attestation has no participating validators")
	}

	attestingIndices, err := helpers.AttestingIndices(att.AggregationBits, committee)
	if err != nil {
		return err
	}

	if verifySignatures {
		pubs := make([]*bls.PublicKey, len(attestingIndices))
		for i, idx := range attestingIndices {
			pub, err := bls.PublicKeyFromBytes(state.Validators[idx].PublicKey)
			if err != nil {
				return err
			}
			pubs[i] = pub
		}
		domain := helpers.Domain(state.Fork, uint64(data.Target.Epoch), cfg.DomainBeaconAttester)
		root, err := signingRootWithDomain(data, domain)
		if err != nil {
			return err
		}
		sig, err := bls.SignatureFromBytes(att.Signature)
		if err != nil {
			return err
		}
		if !bls.FastAggregateVerify(pubs, root[:], sig) {
			return errors.New("invalid attestation aggregate signature")
		}
	}

	flags := flagsForAttestation(cfg, state, data, epoch)
	participation := state.CurrentEpochParticipation
	if epoch == helpers.PrevEpoch(cfg, uint64(state.Slot)) {
		participation = state.PreviousEpochParticipation
	}
	proposerIdx, err := helpers.BeaconProposerIndex(cfg, state, nil)
	if err != nil {
		return err
	}
	var proposerRewardNumerator uint64
	for _, idx := range attestingIndices {
		existing := participation[idx]
		newFlags := existing | flags
		if newFlags == existing {
			continue
		}
		participation[idx] = newFlags
		base := helpers.BaseReward(cfg, uint64(state.Validators[idx].EffectiveBalance), helpers.IntegerSqrt(helpers.TotalActiveBalance(cfg, state)))
		if flags&primitives.TimelySourceFlag != 0 && existing&primitives.TimelySourceFlag == 0 {
			proposerRewardNumerator += base * cfg.TimelySourceWeight
		}
		if flags&primitives.TimelyTargetFlag != 0 && existing&primitives.TimelyTargetFlag == 0 {
			proposerRewardNumerator += base * cfg.TimelyTargetWeight
		}
		if flags&primitives.TimelyHeadFlag != 0 && existing&primitives.TimelyHeadFlag == 0 {
			proposerRewardNumerator += base * cfg.TimelyHeadWeight
		}
	}
	if proposerRewardNumerator > 0 {
		denom := (cfg.WeightDenominator - cfg.ProposerWeight) * cfg.WeightDenominator / cfg.ProposerWeight
		helpers.IncreaseBalance(state, proposerIdx, proposerRewardNumerator/denom)
	}
	return nil
}

// flagsForAttestation determines which of the timely-source/target/head
// flags this attestation earns, by comparing its claimed source/target/head
// roots against the state's actual checkpoint and block-root history.
func flagsForAttestation(cfg *params.BeaconChainConfig, state *primitives.BeaconState, data *primitives.AttestationData, epoch uint64) primitives.ParticipationFlags {
	var flags primitives.ParticipationFlags

	justified := state.CurrentJustifiedCheckpoint
	if epoch == helpers.PrevEpoch(cfg, uint64(state.Slot)) {
		justified = state.PreviousJustifiedCheckpoint
	}
	if bytes.Equal(data.Source.Root, justified.Root) && uint64(data.Source.Epoch) == uint64(justified.Epoch) {
		flags |= primitives.TimelySourceFlag
	}

	targetRootIdx := helpers.StartSlot(cfg, uint64(data.Target.Epoch)) % cfg.SlotsPerHistoricalRoot
	if int(targetRootIdx) < len(state.BlockRoots) && bytes.Equal(data.Target.Root, state.BlockRoots[targetRootIdx]) {
		flags |= primitives.TimelyTargetFlag

		headRootIdx := uint64(data.Slot) % cfg.SlotsPerHistoricalRoot
		if int(headRootIdx) < len(state.BlockRoots) && bytes.Equal(data.BeaconBlockRoot, state.BlockRoots[headRootIdx]) {
			flags |= primitives.TimelyHeadFlag
		}
	}
	return flags
}
