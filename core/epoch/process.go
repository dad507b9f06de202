package epoch

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"context"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

var log = logrus.WithField("prefix", "epoch")

// ProcessEpoch runs the eight epoch-boundary sub-transitions, in the order
// SPEC_FULL.md §4.1 requires. state.Slot must be the first slot of the
// epoch being closed out; this matches the order the source's ProcessEpoch
// dispatches MatchAttestations / ProcessJustificationAndFinalization /
// ProcessCrosslinks / ProcessRewardsAndPenalties / ProcessRegistryUpdates /
// ProcessSlashings / ProcessFinalUpdates, adapted to drop crosslink/shard
// processing and add participation-flag/inactivity/sync-committee steps.
func ProcessEpoch(ctx context.Context, cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	ctx, span := trace.StartSpan(ctx, "epoch.ProcessEpoch")
	defer span.End()

	if err := ProcessJustificationAndFinalization(cfg, state); err != nil {
		return errors.Wrap(err, "could not process justification and finalization")
	}
	if err := ProcessInactivityUpdates(cfg, state); err != nil {
		return errors.Wrap(err, "could not process inactivity updates")
	}
	if err := ProcessRewardsAndPenalties(cfg, state); err != nil {
		return errors.Wrap(err, "could not process rewards and penalties")
	}
	if err := ProcessRegistryUpdates(cfg, state); err != nil {
		return errors.Wrap(err, "could not process registry updates")
	}
	if err := ProcessSlashings(cfg, state); err != nil {
		return errors.Wrap(err, "could not process slashings")
	}
	if err := ProcessEffectiveBalanceUpdates(cfg, state); err != nil {
		return errors.Wrap(err, "could not process effective balance updates")
	}
	if err := ProcessHistoricalRootsUpdate(cfg, state); err != nil {
		return errors.Wrap(err, "could not process historical roots update")
	}
	if err := ProcessParticipationFlagUpdates(state); err != nil {
		return errors.Wrap(err, "could not process participation flag updates")
	}
	if err := ProcessSlashingsReset(cfg, state); err != nil {
		return errors.Wrap(err, "could not reset slashings")
	}
	if err := ProcessRandaoMixesReset(cfg, state); err != nil {
		return errors.Wrap(err, "could not reset randao mixes")
	}
	if err := ProcessSyncCommitteeUpdates(cfg, state); err != nil {
		return errors.Wrap(err, "could not process sync committee updates")
	}

	log.WithFields(logrus.Fields{
		"justifiedEpoch":  state.CurrentJustifiedCheckpoint.Epoch,
		"finalizedEpoch":  state.FinalizedCheckpoint.Epoch,
		"numValidators":   len(state.Validators),
	}).Debug("Processed epoch")
	_ = ctx
	return nil
}
