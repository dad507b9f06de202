// Package epoch implements the eight epoch-boundary sub-transitions:
// justification/finalization, inactivity updates, rewards and penalties,
// registry updates, slashings, effective balance updates, the historical/
// randao/slashings/participation rotations, and sync committee rotation.
// Every function here operates on a state whose slot is the first slot of
// the epoch being processed, matching the order in transition.ProcessEpoch.
package epoch

import (
	"github.com/pkg/errors"
	bitfield "github.com/prysmaticlabs/go-bitfield"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// unslashedParticipatingBalance sums the effective balances of validators in
// epoch's participation vector who are unslashed and have flag set.
func unslashedParticipatingBalance(cfg *params.BeaconChainConfig, state *primitives.BeaconState, flags []primitives.ParticipationFlags, flag primitives.ParticipationFlags, epoch uint64) (uint64, error) {
	indices, err := helpers.ActiveValidatorIndices(state, epoch, nil)
	if err != nil {
		return 0, errors.Wrap(err, "could not get active indices")
	}
	var total uint64
	for _, idx := range indices {
		if int(idx) >= len(flags) {
			continue
		}
		if state.Validators[idx].Slashed {
			continue
		}
		if flags[idx]&flag != 0 {
			total += uint64(state.Validators[idx].EffectiveBalance)
		}
	}
	if total < cfg.EffectiveBalanceIncrement {
		return cfg.EffectiveBalanceIncrement, nil
	}
	return total, nil
}

// ProcessJustificationAndFinalization applies the four-case FFG rule: shift
// the justification bitfield, test previous- and current-epoch target
// participation against the 2/3 supermajority threshold, and finalize
// whichever checkpoint the resulting bit pattern justifies under Casper FFG.
//
// This is fork-independent and is kept structurally identical to the
// teacher's ProcessJustificationAndFinalization: only the participation
// source (flag vectors here, PendingAttestations in the teacher) differs.
func ProcessJustificationAndFinalization(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	if currentEpoch <= cfg.GenesisEpoch+1 {
		return nil
	}
	prevEpoch := helpers.PrevEpoch(cfg, uint64(state.Slot))

	totalActive := helpers.TotalActiveBalance(cfg, state)

	prevTargetBalance, err := unslashedParticipatingBalance(cfg, state, state.PreviousEpochParticipation, primitives.TimelyTargetFlag, prevEpoch)
	if err != nil {
		return err
	}
	currTargetBalance, err := unslashedParticipatingBalance(cfg, state, state.CurrentEpochParticipation, primitives.TimelyTargetFlag, currentEpoch)
	if err != nil {
		return err
	}

	oldPrevJustified := state.PreviousJustifiedCheckpoint
	oldCurrJustified := state.CurrentJustifiedCheckpoint
	state.PreviousJustifiedCheckpoint = oldCurrJustified

	// Shift the justification bitfield left by one and clear the new low bit.
	bits := state.JustificationBits
	shifted := shiftBitvector4(bits)
	state.JustificationBits = shifted

	// Case: previous epoch matched target by >= 2/3.
	if 3*prevTargetBalance >= 2*totalActive {
		root, err := epochBoundaryRoot(cfg, state, prevEpoch)
		if err != nil {
			return err
		}
		state.CurrentJustifiedCheckpoint = &primitives.Checkpoint{Epoch: primitives.Epoch(prevEpoch), Root: root}
		state.JustificationBits.SetBitAt(1, true)
	}
	// Case: current epoch matched target by >= 2/3 (takes precedence, sets bit 0).
	if 3*currTargetBalance >= 2*totalActive {
		root, err := epochBoundaryRoot(cfg, state, currentEpoch)
		if err != nil {
			return err
		}
		state.CurrentJustifiedCheckpoint = &primitives.Checkpoint{Epoch: primitives.Epoch(currentEpoch), Root: root}
		state.JustificationBits.SetBitAt(0, true)
	}

	// Finalization: four cases examining consecutive justified bits.
	jb := state.JustificationBits
	if jb.BitAt(1) && jb.BitAt(2) && jb.BitAt(3) && uint64(oldPrevJustified.Epoch)+3 == currentEpoch {
		state.FinalizedCheckpoint = oldPrevJustified
	}
	if jb.BitAt(1) && jb.BitAt(2) && uint64(oldPrevJustified.Epoch)+2 == currentEpoch {
		state.FinalizedCheckpoint = oldPrevJustified
	}
	if jb.BitAt(0) && jb.BitAt(1) && jb.BitAt(2) && uint64(oldCurrJustified.Epoch)+2 == currentEpoch {
		state.FinalizedCheckpoint = oldCurrJustified
	}
	if jb.BitAt(0) && jb.BitAt(1) && uint64(oldCurrJustified.Epoch)+1 == currentEpoch {
		state.FinalizedCheckpoint = oldCurrJustified
	}
	return nil
}

// shiftBitvector4 shifts the 4-bit justification history left by one,
// discarding the oldest epoch's bit and clearing the newest.
func shiftBitvector4(b bitfield.Bitvector4) bitfield.Bitvector4 {
	shifted := bitfield.NewBitvector4()
	for i := uint64(1); i < 4; i++ {
		shifted.SetBitAt(i, b.BitAt(i-1))
	}
	return shifted
}

// epochBoundaryRoot returns the block root at the first slot of epoch, read
// from the state's historical block-roots ring.
func epochBoundaryRoot(cfg *params.BeaconChainConfig, state *primitives.BeaconState, epoch uint64) ([]byte, error) {
	slot := helpers.StartSlot(cfg, epoch)
	idx := slot % cfg.SlotsPerHistoricalRoot
	if int(idx) >= len(state.BlockRoots) {
		return nil, errors.New("epoch boundary slot out of historical root range")
	}
	return state.BlockRoots[idx], nil
}
