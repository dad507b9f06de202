package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessProposerSlashings verifies and applies every proposer slashing in
// the block, in order, aborting the whole block on the first invalid one.
func ProcessProposerSlashings(cfg *params.BeaconChainConfig, state *primitives.BeaconState, slashings []*primitives.ProposerSlashing, verifySignatures bool) error {
	for i, s := range slashings {
		if err := verifyProposerSlashing(cfg, state, s, verifySignatures); err != nil {
			return errors.Wrapf(err, "proposer slashing %d invalid", i)
		}
		if err := slashValidator(cfg, state, uint64(s.Header1.Header.ProposerIndex)); err != nil {
			return err
		}
	}
	return nil
}

func verifyProposerSlashing(cfg *params.BeaconChainConfig, state *primitives.BeaconState, s *primitives.ProposerSlashing, verifySignatures bool) error {
	h1, h2 := s.Header1.Header, s.Header2.Header
	if h1.Slot != h2.Slot {
		return errors.New("headers do not match the same slot")
	}
	if h1.ProposerIndex != h2.ProposerIndex {
		return errors.New("headers do not match the same proposer")
	}
	r1, err := sszHashTreeRoot(h1)
	if err != nil {
		return err
	}
	r2, err := sszHashTreeRoot(h2)
	if err != nil {
		return err
	}
	if bytes.Equal(r1[:], r2[:]) {
		return errors.New("headers are identical, not a slashable offense")
	}
	if int(h1.ProposerIndex) >= len(state.Validators) {
		return errors.New("proposer index out of range")
	}
	proposer := state.Validators[h1.ProposerIndex]
	epoch := helpers.SlotToEpoch(cfg, uint64(h1.Slot))
	if !helpers.IsSlashableValidator(proposer, epoch) {
		return errors.New("proposer is not slashable")
	}
	if !verifySignatures {
		return nil
	}
	pub, err := bls.PublicKeyFromBytes(proposer.PublicKey)
	if err != nil {
		return err
	}
	for _, h := range []*primitives.SignedBeaconBlockHeader{s.Header1, s.Header2} {
		domain := helpers.Domain(state.Fork, epoch, cfg.DomainBeaconProposer)
		root, err := signingRootWithDomain(h.Header, domain)
		if err != nil {
			return err
		}
		sig, err := bls.SignatureFromBytes(h.Signature)
		if err != nil {
			return err
		}
		if !bls.Verify(pub, root[:], sig) {
			return errors.New("invalid header signature")
		}
	}
	return nil
}

func signingRootWithDomain(v interface{}, domain []byte) ([32]byte, error) {
	root, err := sszHashTreeRoot(v)
	if err != nil {
		return [32]byte{}, err
	}
	type signingData struct {
		ObjectRoot []byte `ssz-size:"32"`
		Domain     []byte `ssz-size:"32"`
	}
	return sszSigningRoot(&signingData{ObjectRoot: root[:], Domain: domain})
}

// slashValidator marks a validator slashed, initiates its exit, extends its
// withdrawable epoch, adds its balance to the slashings ring, applies the
// immediate minimum slashing penalty, and credits the whistleblower (here:
// the current proposer).
func slashValidator(cfg *params.BeaconChainConfig, state *primitives.BeaconState, idx uint64) error {
	epoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	v := state.Validators[idx]
	if v.Slashed {
		return nil
	}
	v.Slashed = true
	if err := initiateExitDuringBlockProcessing(cfg, state, v, epoch); err != nil {
		return err
	}
	withdrawable := epoch + cfg.EpochsPerSlashingsVector
	if withdrawable > uint64(v.WithdrawableEpoch) {
		v.WithdrawableEpoch = primitives.Epoch(withdrawable)
	}

	slashRingIdx := epoch % cfg.EpochsPerSlashingsVector
	state.Slashings[slashRingIdx] += v.EffectiveBalance

	minPenalty := uint64(v.EffectiveBalance) / cfg.MinSlashingPenaltyQuotient
	helpers.DecreaseBalance(state, idx, minPenalty)

	proposerIdx, err := helpers.BeaconProposerIndex(cfg, state, nil)
	if err != nil {
		return err
	}
	whistleblowerReward := uint64(v.EffectiveBalance) / cfg.WhistleblowerRewardQuotient
	proposerReward := whistleblowerReward / cfg.ProposerWeight
	helpers.IncreaseBalance(state, proposerIdx, proposerReward)
	helpers.IncreaseBalance(state, proposerIdx, whistleblowerReward-proposerReward)

	return nil
}
