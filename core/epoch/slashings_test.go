package epoch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestProcessSlashings_PenalizesValidatorAtTargetWithdrawableEpoch(t *testing.T) {
	cfg := params.MinimalConfig()
	currentEpoch := uint64(100)
	target := currentEpoch + cfg.EpochsPerSlashingsVector/2

	slashed := &primitives.Validator{
		EffectiveBalance:  primitives.Gwei(cfg.MaxEffectiveBalance),
		Slashed:           true,
		WithdrawableEpoch: primitives.Epoch(target),
		ActivationEpoch:   0,
		ExitEpoch:         primitives.Epoch(cfg.FarFutureEpoch),
	}
	untouched := &primitives.Validator{
		EffectiveBalance:  primitives.Gwei(cfg.MaxEffectiveBalance),
		ActivationEpoch:   0,
		ExitEpoch:         primitives.Epoch(cfg.FarFutureEpoch),
		WithdrawableEpoch: primitives.Epoch(cfg.FarFutureEpoch),
	}

	st := &primitives.BeaconState{
		Slot:       primitives.Slot(currentEpoch * cfg.SlotsPerEpoch),
		Validators: []*primitives.Validator{slashed, untouched},
		Balances:   []primitives.Gwei{cfg.MaxEffectiveBalance, cfg.MaxEffectiveBalance},
		Slashings:  make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
	}
	st.Slashings[currentEpoch%cfg.EpochsPerSlashingsVector] = primitives.Gwei(cfg.MaxEffectiveBalance)

	require.NoError(t, ProcessSlashings(cfg, st))
	require.Less(t, uint64(st.Balances[0]), cfg.MaxEffectiveBalance, "a validator at its slashing target epoch must be penalized")
	require.Equal(t, cfg.MaxEffectiveBalance, uint64(st.Balances[1]), "a validator not at its slashing target epoch must be untouched")
}

func TestProcessSlashings_IgnoresNonSlashedValidators(t *testing.T) {
	cfg := params.MinimalConfig()
	currentEpoch := uint64(100)
	target := currentEpoch + cfg.EpochsPerSlashingsVector/2

	v := &primitives.Validator{
		EffectiveBalance:  primitives.Gwei(cfg.MaxEffectiveBalance),
		Slashed:           false,
		WithdrawableEpoch: primitives.Epoch(target),
		ActivationEpoch:   0,
		ExitEpoch:         primitives.Epoch(cfg.FarFutureEpoch),
	}
	st := &primitives.BeaconState{
		Slot:       primitives.Slot(currentEpoch * cfg.SlotsPerEpoch),
		Validators: []*primitives.Validator{v},
		Balances:   []primitives.Gwei{cfg.MaxEffectiveBalance},
		Slashings:  make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
	}

	require.NoError(t, ProcessSlashings(cfg, st))
	require.Equal(t, cfg.MaxEffectiveBalance, uint64(st.Balances[0]))
}
