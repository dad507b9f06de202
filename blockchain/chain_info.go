package blockchain

import (
	"github.com/lightcrest/beacon-chain/primitives"
)

// HeadFetcher is the read-path capability for the current canonical head,
// grounded on the teacher's chain_info.go interface of the same name.
type HeadFetcher interface {
	HeadRoot() [32]byte
	HeadState() *primitives.BeaconState
	HeadSlot() uint64
}

// FinalizationFetcher exposes the store's realized checkpoints.
type FinalizationFetcher interface {
	FinalizedCheckpoint() primitives.Checkpoint
	JustifiedCheckpoint() primitives.Checkpoint
}

// TimeFetcher exposes the genesis time the orchestrator was configured
// with, needed by callers computing the current wall-clock slot.
type TimeFetcher interface {
	GenesisTime() uint64
}

// ChainInfoFetcher is the union capability handed to read-only collaborators
// (a block proposer, an RPC layer) that must never be able to mutate the
// orchestrator's state directly.
type ChainInfoFetcher interface {
	HeadFetcher
	FinalizationFetcher
	TimeFetcher
}

// HeadRoot returns the current canonical head block root.
func (s *Service) HeadRoot() [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headRoot
}

// HeadState returns the cached state of the current canonical head.
// Callers must not mutate the returned state; it is shared with the
// orchestrator's own writer task.
func (s *Service) HeadState() *primitives.BeaconState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headState
}

// HeadSlot returns the slot of the current canonical head block.
func (s *Service) HeadSlot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headState == nil {
		return 0
	}
	return uint64(s.headState.Slot)
}

// FinalizedCheckpoint returns the fork-choice store's current finalized checkpoint.
func (s *Service) FinalizedCheckpoint() primitives.Checkpoint {
	return s.fc.FinalizedCheckpoint()
}

// JustifiedCheckpoint returns the fork-choice store's current justified checkpoint.
func (s *Service) JustifiedCheckpoint() primitives.Checkpoint {
	return s.fc.JustifiedCheckpoint()
}

// GenesisTime returns the configured genesis unix timestamp.
func (s *Service) GenesisTime() uint64 {
	return s.genesisTime
}

var _ ChainInfoFetcher = (*Service)(nil)
