package epoch

import (
	"sort"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessRegistryUpdates marks validators eligible for activation, queues
// activations in activation-eligibility-epoch order (index as tiebreaker)
// limited by the churn limit, and ejects validators whose effective
// balance fell below the ejection threshold.
func ProcessRegistryUpdates(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))

	// Mark eligible for activation, and eject under-balance validators.
	for _, v := range state.Validators {
		if v.ActivationEligibilityEpoch == primitives.Epoch(cfg.FarFutureEpoch) &&
			uint64(v.EffectiveBalance) == cfg.MaxEffectiveBalance {
			v.ActivationEligibilityEpoch = primitives.Epoch(currentEpoch + 1)
		}
		if helpers.IsActiveValidator(v, currentEpoch) && uint64(v.EffectiveBalance) <= cfg.EjectionBalance {
			if err := initiateValidatorExit(cfg, state, v, currentEpoch); err != nil {
				return err
			}
		}
	}

	// Queue activations: eligible, not yet activated, ordered by
	// (activation_eligibility_epoch, index), limited by the churn limit.
	var eligible []uint64
	for i, v := range state.Validators {
		if v.ActivationEligibilityEpoch != primitives.Epoch(cfg.FarFutureEpoch) &&
			v.ActivationEpoch == primitives.Epoch(cfg.FarFutureEpoch) {
			eligible = append(eligible, uint64(i))
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := state.Validators[eligible[i]], state.Validators[eligible[j]]
		if a.ActivationEligibilityEpoch != b.ActivationEligibilityEpoch {
			return a.ActivationEligibilityEpoch < b.ActivationEligibilityEpoch
		}
		return eligible[i] < eligible[j]
	})

	activeCount, err := helpers.ActiveValidatorCount(state, currentEpoch, nil)
	if err != nil {
		return err
	}
	churnLimit := helpers.ValidatorChurnLimit(cfg, activeCount)
	if uint64(len(eligible)) > churnLimit {
		eligible = eligible[:churnLimit]
	}
	for _, idx := range eligible {
		state.Validators[idx].ActivationEpoch = primitives.Epoch(helpers.ActivationExitEpoch(cfg, currentEpoch))
	}
	return nil
}

// initiateValidatorExit sets v's exit and withdrawable epochs, queuing it
// behind the configured churn limit the same way a voluntary exit would.
func initiateValidatorExit(cfg *params.BeaconChainConfig, state *primitives.BeaconState, v *primitives.Validator, currentEpoch uint64) error {
	if v.ExitEpoch != primitives.Epoch(cfg.FarFutureEpoch) {
		return nil // already exiting
	}

	exitEpochs := make([]uint64, 0)
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

	exitQueueChurn := uint64(0)
	for _, e := range exitEpochs {
		if e == exitQueueEpoch {
			exitQueueChurn++
		}
	}
	if exitQueueChurn >= churnLimit {
		exitQueueEpoch++
	}

	v.ExitEpoch = primitives.Epoch(exitQueueEpoch)
	v.WithdrawableEpoch = primitives.Epoch(exitQueueEpoch + cfg.MinValidatorWithdrawabilityDelay)
	return nil
}
