package blockchain

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/lightcrest/beacon-chain/core/transition"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ReceiveBlock is the sole entry point a sync or RPC layer uses to hand the
// orchestrator a newly received block. It drives the block through the
// four-phase pipeline (spec.md §9 DESIGN NOTES): validate, transition,
// persist, publish. A failure at any phase drops the record atomically;
// nothing downstream of the failed phase is ever applied.
func (s *Service) ReceiveBlock(ctx context.Context, signed *primitives.SignedBeaconBlock) error {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveBlock")
	defer span.End()

	root, err := blockRoot(signed.Block)
	if err != nil {
		return errors.Wrap(err, "could not compute block root")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.badBlocks[root] {
		return &PreconditionMissingError{Kind: "block previously marked invalid"}
	}

	var parentRoot [32]byte
	copy(parentRoot[:], signed.Block.ParentRoot)

	rec := &inFlight{root: root, parentRoot: parentRoot, signed: signed}

	err = runPipeline(rec,
		s.validatePhase,
		s.transitionPhase,
		s.persistPhase,
		s.publishPhase,
	)
	s.observers.emitBlockProcessed(BlockProcessedEvent{Root: root, Slot: uint64(signed.Block.Slot), Error: err})
	if err != nil {
		s.quarantine(root, err)
		return err
	}
	return nil
}

// validatePhase loads the pre-state the block builds on. A missing parent
// state is reported as PreconditionMissingError so callers can buffer the
// block rather than discarding it outright.
func (s *Service) validatePhase(rec *inFlight) error {
	pre, err := s.stateByRoot(rec.parentRoot)
	if err != nil {
		return errors.Wrap(err, "could not load parent state")
	}
	if pre == nil {
		return &PreconditionMissingError{Kind: "parent state"}
	}
	rec.preState = pre.Clone()
	return nil
}

// transitionPhase runs the full state-transition function with signature and
// state-root verification enabled, the posture every network-received block
// must satisfy per spec.md §7.
func (s *Service) transitionPhase(rec *inFlight) error {
	if err := transition.ExecuteStateTransition(context.Background(), s.cfg, rec.preState, rec.signed, s.transitionConfig()); err != nil {
		if errors.Is(err, transition.ErrStateRootMismatch) {
			return &InvalidOperationError{Kind: "block", Reason: err.Error()}
		}
		return err
	}
	rec.postState = rec.preState
	return nil
}

// persistPhase submits the resulting payload to the execution engine (if
// the block carries one), inserts the block into the fork-choice store,
// and atomically persists block, state, and any newly realized checkpoints.
func (s *Service) persistPhase(rec *inFlight) error {
	body := rec.signed.Block.Body
	optimistic := false
	if body.ExecutionPayload != nil {
		status, err := s.engine.NewPayload(context.Background(), body.ExecutionPayload)
		if err != nil {
			return &ExecutionUnavailableError{Cause: err}
		}
		switch status {
		case 1: // execution.Invalid
			return &ExecutionInvalidError{Reason: "execution engine rejected payload"}
		case 2: // execution.Syncing
			optimistic = true
		}
	}

	justified := *rec.postState.CurrentJustifiedCheckpoint
	finalized := *rec.postState.FinalizedCheckpoint
	prevJustifiedEpoch := s.fc.JustifiedCheckpoint().Epoch
	prevFinalizedEpoch := s.fc.FinalizedCheckpoint().Epoch
	if err := s.fc.OnBlock(rec.root, rec.parentRoot, uint64(rec.signed.Block.Slot), justified, finalized); err != nil {
		return errors.Wrap(err, "could not insert block into fork choice store")
	}
	if optimistic {
		s.fc.MarkOptimistic(rec.root)
	}

	var justCP, finCP *primitives.Checkpoint
	if justified.Epoch > prevJustifiedEpoch {
		justCP = &justified
	}
	if finalized.Epoch > prevFinalizedEpoch {
		finCP = &finalized
	}
	if err := s.db.SaveBlockAndState(rec.root, rec.signed, rec.postState, justCP, finCP); err != nil {
		return errors.Wrap(err, "could not persist block and state")
	}
	rec.justified = justCP
	rec.finalized = finCP
	return nil
}

// publishPhase recomputes the fork-choice head, pins it if it changed, and
// fans out the resulting events; it also drops the block's operations from
// the pending pools and logs a competing-block note when the new block does
// not extend the previous head, mirroring the teacher's isCompetingBlock.
func (s *Service) publishPhase(rec *inFlight) error {
	s.pool.RemoveIncluded(rec.signed.Block.Body)

	newHead, err := s.fc.Head()
	if err != nil {
		return errors.Wrap(err, "could not compute new head")
	}
	oldHead := s.headRoot
	if newHead != oldHead {
		newState, err := s.stateByRoot(newHead)
		if err != nil {
			return errors.Wrap(err, "could not load new head state")
		}
		if newState == nil {
			return &PreconditionMissingError{Kind: "new head state"}
		}
		s.isCompetingBlock(newHead, uint64(newState.Slot), oldHead, uint64(s.headState.Slot))

		s.unpin(oldHead)
		s.headRoot = newHead
		s.headState = newState
		s.pin(newHead, newState)
		if err := s.db.SaveHeadBlockRoot(newHead); err != nil {
			return errors.Wrap(err, "could not save head block root")
		}
		s.observers.emitHead(HeadChangedEvent{NewHeadRoot: newHead, OldHeadRoot: oldHead})
	}

	if rec.justified != nil {
		s.observers.emitJustified(CheckpointEvent{Epoch: uint64(rec.justified.Epoch), Root: rec.justified.Root32()})
	}
	if rec.finalized != nil {
		s.observers.emitFinalized(CheckpointEvent{Epoch: uint64(rec.finalized.Epoch), Root: rec.finalized.Root32()})
	}
	return nil
}

// quarantine marks root invalid in both the fork-choice store and the
// persistent store when the failure indicates the block itself (not just
// its processing environment) is at fault; a PreconditionMissingError never
// quarantines, since the block may simply be out of order.
func (s *Service) quarantine(root [32]byte, cause error) {
	var precondition *PreconditionMissingError
	if errors.As(cause, &precondition) {
		return
	}
	var unavailable *ExecutionUnavailableError
	if errors.As(cause, &unavailable) {
		return
	}
	s.fc.MarkInvalid(root)
	if err := s.db.MarkBadBlock(root); err != nil {
		log.WithError(err).Warn("could not persist bad block marker")
	}
	s.badBlocks[root] = true
}

// isCompetingBlock logs when newRoot does not descend from the previous
// head, matching the teacher's diagnostic of the same name.
func (s *Service) isCompetingBlock(newRoot [32]byte, newSlot uint64, oldRoot [32]byte, oldSlot uint64) {
	for cur := newRoot; ; {
		if bytes.Equal(cur[:], oldRoot[:]) {
			return
		}
		n, ok := s.fc.Node(cur)
		if !ok || n.ParentRoot == cur {
			break
		}
		cur = n.ParentRoot
	}
	log.WithFields(logrus.Fields{
		"newSlot": newSlot,
		"oldSlot": oldSlot,
	}).Debug("Head reorganized to a competing block")
}
