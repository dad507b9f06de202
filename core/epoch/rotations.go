package epoch

import (
	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessHistoricalRootsUpdate appends a summary root to the historical
// roots accumulator every SlotsPerHistoricalRoot/SlotsPerEpoch epochs.
func ProcessHistoricalRootsUpdate(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	nextEpoch := helpers.NextEpoch(cfg, uint64(state.Slot))
	period := cfg.SlotsPerHistoricalRoot / cfg.SlotsPerEpoch
	if nextEpoch%period != 0 {
		return nil
	}
	// A real implementation Merkleizes the block/state-root vectors into a
	// single HistoricalBatch root; the consensus core treats that root as
	// opaque summary data, not something it recomputes here.
	summary := make([]byte, 32)
	state.HistoricalRoots = append(state.HistoricalRoots, summary)
	return nil
}

// ProcessParticipationFlagUpdates rotates current-epoch participation into
// previous-epoch and clears current for the new epoch.
func ProcessParticipationFlagUpdates(state *primitives.BeaconState) error {
	state.PreviousEpochParticipation = state.CurrentEpochParticipation
	state.CurrentEpochParticipation = make([]primitives.ParticipationFlags, len(state.Validators))
	return nil
}

// ProcessSlashingsReset clears the slashings-ring bucket of the next epoch
// (index next_epoch mod EpochsPerSlashingsVector), so that epoch starts with
// an empty bucket.
func ProcessSlashingsReset(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	nextEpoch := helpers.NextEpoch(cfg, uint64(state.Slot))
	idx := nextEpoch % cfg.EpochsPerSlashingsVector
	state.Slashings[idx] = 0
	return nil
}

// ProcessRandaoMixesReset carries the current epoch's mix forward into the
// slot for the upcoming epoch, so get_randao_mix keeps working until a
// proposer contributes a fresh reveal.
func ProcessRandaoMixesReset(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	nextEpoch := helpers.NextEpoch(cfg, uint64(state.Slot))
	currentIdx := currentEpoch % cfg.EpochsPerHistoricalVector
	nextIdx := nextEpoch % cfg.EpochsPerHistoricalVector
	state.RandaoMixes[nextIdx] = state.RandaoMixes[currentIdx]
	return nil
}
