package blocks

import (
	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessAttesterSlashings verifies and applies every attester slashing in
// the block: each proves two attestations from an overlapping validator
// set are mutually slashable (double vote on the same target epoch, or a
// surround vote), and every slashable validator named by both is slashed.
func ProcessAttesterSlashings(cfg *params.BeaconChainConfig, state *primitives.BeaconState, slashings []*primitives.AttesterSlashing, verifySignatures bool) error {
	for i, s := range slashings {
		slashable, err := verifyAttesterSlashing(cfg, state, s, verifySignatures)
		if err != nil {
			return errors.Wrapf(err, "attester slashing %d invalid", i)
		}
		if len(slashable) == 0 {
			return errors.Errorf("attester slashing %d names no slashable validator", i)
		}
		for _, idx := range slashable {
			if err := slashValidator(cfg, state, idx); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyAttesterSlashing(cfg *params.BeaconChainConfig, state *primitives.BeaconState, s *primitives.AttesterSlashing, verifySignatures bool) ([]uint64, error) {
	a1, a2 := s.Attestation1, s.Attestation2
	if !isSlashableAttestationData(a1.Data, a2.Data) {
		return nil, errors.New("attestations are not mutually slashable")
	}
	if verifySignatures {
		if err := verifyIndexedAttestation(cfg, state, a1); err != nil {
			return nil, errors.Wrap(err, "first attestation invalid")
		}
		if err := verifyIndexedAttestation(cfg, state, a2); err != nil {
			return nil, errors.Wrap(err, "second attestation invalid")
		}
	}

	set1 := make(map[uint64]bool, len(a1.AttestingIndices))
	for _, idx := range a1.AttestingIndices {
		set1[idx] = true
	}
	epoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	var slashable []uint64
	for _, idx := range a2.AttestingIndices {
		if set1[idx] && int(idx) < len(state.Validators) && helpers.IsSlashableValidator(state.Validators[idx], epoch) {
			slashable = append(slashable, idx)
		}
	}
	return slashable, nil
}

// isSlashableAttestationData reports double-vote (same target epoch,
// different data) or surround-vote (one attestation's source/target span
// strictly contains the other's).
func isSlashableAttestationData(a, b *primitives.AttestationData) bool {
	doubleVote := a.Target.Epoch == b.Target.Epoch && !attestationDataEqual(a, b)
	surround := (a.Source.Epoch < b.Source.Epoch && b.Target.Epoch < a.Target.Epoch) ||
		(b.Source.Epoch < a.Source.Epoch && a.Target.Epoch < b.Target.Epoch)
	return doubleVote || surround
}

func attestationDataEqual(a, b *primitives.AttestationData) bool {
	ra, err := sszHashTreeRoot(a)
	if err != nil {
		return false
	}
	rb, err := sszHashTreeRoot(b)
	if err != nil {
		return false
	}
	return ra == rb
}

// verifyIndexedAttestation checks that AttestingIndices is sorted and
// unique and that the aggregate signature verifies against them.
func verifyIndexedAttestation(cfg *params.BeaconChainConfig, state *primitives.BeaconState, att *primitives.IndexedAttestation) error {
	if len(att.AttestingIndices) == 0 {
		return errors.New("attesting indices must not be empty")
	}
	for i := 1; i < len(att.AttestingIndices); i++ {
		if att.AttestingIndices[i] <= att.AttestingIndices[i-1] {
			return errors.New("attesting indices must be sorted and unique")
		}
	}
	pubs := make([]*bls.PublicKey, len(att.AttestingIndices))
	for i, idx := range att.AttestingIndices {
		if int(idx) >= len(state.Validators) {
			return errors.New("attesting index out of range")
		}
		pub, err := bls.PublicKeyFromBytes(state.Validators[idx].PublicKey)
		if err != nil {
			return err
		}
		pubs[i] = pub
	}
	domain := helpers.Domain(state.Fork, uint64(att.Data.Target.Epoch), cfg.DomainBeaconAttester)
	root, err := signingRootWithDomain(att.Data, domain)
	if err != nil {
		return err
	}
	sig, err := bls.SignatureFromBytes(att.Signature)
	if err != nil {
		return err
	}
	msgs := make([][]byte, len(pubs))
	for i := range msgs {
		msgs[i] = root[:]
	}
	if !bls.AggregateVerify(pubs, msgs, sig) {
		return errors.New("invalid aggregate signature")
	}
	return nil
}
