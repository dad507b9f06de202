// Package blocks implements the per-operation admissibility checks and
// state mutations that make up block processing: block header, randao,
// eth1 data, proposer slashings, attester slashings, attestations,
// deposits, voluntary exits, sync aggregate, and execution payload
// consistency. Each Process* function either mutates state in place and
// returns nil, or leaves state untouched and returns a non-nil error
// describing which admissibility check failed — callers (core/transition)
// are responsible for aborting the whole block on the first error, per the
// "any failure aborts the entire transition" rule.
package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessBlockHeader verifies the incoming block's header against state and
// advances state.LatestBlockHeader to describe it.
func ProcessBlockHeader(cfg *params.BeaconChainConfig, state *primitives.BeaconState, block *primitives.BeaconBlock) error {
	if uint64(block.Slot) != uint64(state.Slot) {
		return errors.Errorf("block slot %d does not match state slot %d", block.Slot, state.Slot)
	}
	if uint64(block.Slot) <= uint64(state.LatestBlockHeader.Slot) {
		return errors.New("block slot must be greater than latest block header slot")
	}

	proposerIdx, err := helpers.BeaconProposerIndex(cfg, state, nil)
	if err != nil {
		return errors.Wrap(err, "could not compute proposer index")
	}
	if uint64(block.ProposerIndex) != proposerIdx {
		return errors.Errorf("block proposer index %d does not match expected %d", block.ProposerIndex, proposerIdx)
	}

	parentRoot, err := signingRoot(state.LatestBlockHeader)
	if err != nil {
		return err
	}
	if !bytes.Equal(block.ParentRoot, parentRoot[:]) {
		return errors.New("block parent root does not match latest block header root")
	}

	v := state.Validators[block.ProposerIndex]
	if v.Slashed {
		return errors.New("proposer has been slashed")
	}

	bodyRoot, err := hashTreeRoot(block.Body)
	if err != nil {
		return errors.Wrap(err, "could not compute block body root")
	}

	state.LatestBlockHeader = &primitives.BeaconBlockHeader{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    block.ParentRoot,
		StateRoot:     make([]byte, 32), // zeroed; filled in by ProcessSlot on the next slot advance
		BodyRoot:      bodyRoot[:],
	}
	return nil
}

// signingRoot and hashTreeRoot are thin indirections over go-ssz so this
// package's exported surface does not leak the ssz dependency into callers
// that only need admissibility results.
func signingRoot(h *primitives.BeaconBlockHeader) ([32]byte, error) {
	return sszSigningRoot(h)
}

func hashTreeRoot(b *primitives.BeaconBlockBody) ([32]byte, error) {
	return sszHashTreeRoot(b)
}
