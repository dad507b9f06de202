package blockchain

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/primitives"
)

// OnSlot ticks the orchestrator forward to slot. It advances the
// fork-choice store's clock (pulling any unrealized justification or
// finalization before recomputing the head, per the Open Question
// resolution in spec.md §9), at the first slot of each epoch refreshes the
// voting weights the store uses from the now-current justified state, and
// recomputes the canonical head.
// Block processing itself happens in ReceiveBlock; OnSlot only accounts for
// the passage of time between blocks.
func (s *Service) OnSlot(ctx context.Context, slot uint64) error {
	_, span := trace.StartSpan(ctx, "blockchain.OnSlot")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fc.OnTick(slot)

	if s.cfg.SlotsPerEpoch > 0 && slot%s.cfg.SlotsPerEpoch == 0 {
		s.refreshVotingWeightsLocked()
	}

	newHead, err := s.fc.Head()
	if err != nil {
		return errors.Wrap(err, "could not compute head on slot tick")
	}
	if newHead == s.headRoot {
		return nil
	}
	newState, err := s.stateByRoot(newHead)
	if err != nil {
		return errors.Wrap(err, "could not load new head state")
	}
	if newState == nil {
		return &PreconditionMissingError{Kind: "new head state"}
	}

	oldHead := s.headRoot
	s.unpin(oldHead)
	s.headRoot = newHead
	s.headState = newState
	s.pin(newHead, newState)
	if err := s.db.SaveHeadBlockRoot(newHead); err != nil {
		return errors.Wrap(err, "could not save head block root")
	}
	s.observers.emitHead(HeadChangedEvent{NewHeadRoot: newHead, OldHeadRoot: oldHead})
	return nil
}

// refreshVotingWeightsLocked recomputes every active validator's effective
// balance from the current justified state and hands it to the fork-choice
// store, keeping LMD-GHOST weights aligned with the chain's latest
// justified view rather than the stale weights of a much older epoch.
func (s *Service) refreshVotingWeightsLocked() {
	justifiedRoot := s.fc.JustifiedCheckpoint().Root32()
	st, err := s.stateByRoot(justifiedRoot)
	if err != nil || st == nil {
		return
	}
	currentEpoch := helpers.CurrentEpoch(s.cfg, uint64(st.Slot))
	for i, v := range st.Validators {
		if !v.Slashed && uint64(v.ActivationEpoch) <= currentEpoch && currentEpoch < uint64(v.ExitEpoch) {
			s.fc.SetEffectiveBalance(primitives.ValidatorIndex(i), uint64(v.EffectiveBalance))
		}
	}
}
