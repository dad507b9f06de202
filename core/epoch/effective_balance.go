package epoch

import (
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

const (
	hysteresisQuotient       = 4
	hysteresisDownwardMult   = 1
	hysteresisUpwardMult     = 5
)

// ProcessEffectiveBalanceUpdates snaps each validator's effective balance
// toward its actual balance once the actual balance drifts far enough that
// hysteresis no longer suppresses the update, preventing the effective
// balance (and therefore committee weight) from flapping on every small
// reward/penalty.
func ProcessEffectiveBalanceUpdates(cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	hysteresisIncrement := cfg.EffectiveBalanceIncrement / hysteresisQuotient
	downward := hysteresisIncrement * hysteresisDownwardMult
	upward := hysteresisIncrement * hysteresisUpwardMult

	for idx, v := range state.Validators {
		balance := uint64(state.Balances[idx])
		effective := uint64(v.EffectiveBalance)
		if balance+downward < effective || effective+upward < balance {
			newEffective := balance - (balance % cfg.EffectiveBalanceIncrement)
			if newEffective > cfg.MaxEffectiveBalance {
				newEffective = cfg.MaxEffectiveBalance
			}
			v.EffectiveBalance = primitives.Gwei(newEffective)
		}
	}
	return nil
}
