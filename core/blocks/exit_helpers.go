package blocks

import (
	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// initiateExitDuringBlockProcessing queues v for exit, churn-limited the
// same way epoch.ProcessRegistryUpdates queues registry-driven exits. Block
// processing needs its own copy of this logic because slashings and
// voluntary exits can both trigger an exit mid-block, before the next
// epoch boundary recomputes the registry.
func initiateExitDuringBlockProcessing(cfg *params.BeaconChainConfig, state *primitives.BeaconState, v *primitives.Validator, currentEpoch uint64) error {
	if v.ExitEpoch != primitives.Epoch(cfg.FarFutureEpoch) {
		return nil
	}

	var exitEpochs []uint64
	for _, other := range state.Validators {
		if other.ExitEpoch != primitives.Epoch(cfg.FarFutureEpoch) {
			exitEpochs = append(exitEpochs, uint64(other.ExitEpoch))
		}
	}
	exitQueueEpoch := helpers.ActivationExitEpoch(cfg, currentEpoch)
	for _, e := range exitEpochs {
		if e > exitQueueEpoch {
			exitQueueEpoch = e
		}
	}

	activeCount, err := helpers.ActiveValidatorCount(state, currentEpoch, nil)
	if err != nil {
		return err
	}
	churnLimit := helpers.ValidatorChurnLimit(cfg, activeCount)

	var churnAtEpoch uint64
	for _, e := range exitEpochs {
		if e == exitQueueEpoch {
			churnAtEpoch++
		}
	}
	if churnAtEpoch >= churnLimit {
		exitQueueEpoch++
	}

	v.ExitEpoch = primitives.Epoch(exitQueueEpoch)
	v.WithdrawableEpoch = primitives.Epoch(exitQueueEpoch + cfg.MinValidatorWithdrawabilityDelay)
	return nil
}
