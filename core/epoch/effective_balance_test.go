package epoch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestProcessEffectiveBalanceUpdates_NoChangeWithinHysteresis(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{{EffectiveBalance: 32000000000}},
		Balances:   []primitives.Gwei{31999999999},
	}

	require.NoError(t, ProcessEffectiveBalanceUpdates(cfg, st))
	require.Equal(t, primitives.Gwei(32000000000), st.Validators[0].EffectiveBalance,
		"a one-gwei drop is within the downward hysteresis band and must not move effective balance")
}

func TestProcessEffectiveBalanceUpdates_SnapsDownBeyondHysteresis(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{{EffectiveBalance: 32000000000}},
		Balances:   []primitives.Gwei{30000000000},
	}

	require.NoError(t, ProcessEffectiveBalanceUpdates(cfg, st))
	require.Equal(t, primitives.Gwei(30000000000), st.Validators[0].EffectiveBalance)
}

func TestProcessEffectiveBalanceUpdates_CapsAtMaxEffectiveBalance(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{{EffectiveBalance: 1000000000}},
		Balances:   []primitives.Gwei{40000000000},
	}

	require.NoError(t, ProcessEffectiveBalanceUpdates(cfg, st))
	require.Equal(t, primitives.Gwei(cfg.MaxEffectiveBalance), st.Validators[0].EffectiveBalance)
}
