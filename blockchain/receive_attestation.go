package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ReceiveAttestation validates att against the committee assignment its
// target epoch's state implies, then feeds the fork-choice store one vote
// per attesting validator index (spec.md §4.3). It does not mutate the
// head; OnSlot or the next ReceiveBlock call picks up any resulting change.
func (s *Service) ReceiveAttestation(ctx context.Context, att *primitives.Attestation) error {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveAttestation")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var targetRoot [32]byte
	copy(targetRoot[:], att.Data.Target.Root)

	st, err := s.stateByRoot(targetRoot)
	if err != nil {
		return errors.Wrap(err, "could not load target state")
	}
	if st == nil {
		// Fall back to the head state: the target block may not yet have a
		// distinct committee assignment from the current committee epoch.
		st = s.headState
	}

	committee, err := helpers.BeaconCommittee(s.cfg, st, uint64(att.Data.Slot), att.Data.CommitteeIndex, nil)
	if err != nil {
		return errors.Wrap(err, "could not compute attesting committee")
	}
	if err := helpers.VerifyBitfieldLength(att.AggregationBits, uint64(len(committee))); err != nil {
		return &InvalidOperationError{Kind: "attestation", Reason: err.Error()}
	}
	indices, err := helpers.AttestingIndices(att.AggregationBits, committee)
	if err != nil {
		return errors.Wrap(err, "could not resolve attesting indices")
	}

	var beaconBlockRoot [32]byte
	copy(beaconBlockRoot[:], att.Data.BeaconBlockRoot)
	targetEpoch := uint64(att.Data.Target.Epoch)

	for _, idx := range indices {
		s.fc.OnAttestation(primitives.ValidatorIndex(idx), targetEpoch, beaconBlockRoot)
	}

	s.observers.emitAttestationProcessed(AttestationProcessedEvent{ValidatorIndices: indices, TargetRoot: targetRoot})
	return nil
}
