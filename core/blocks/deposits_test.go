package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestProcessDeposits_TopsUpExistingValidator(t *testing.T) {
	cfg := params.MinimalConfig()
	pub := []byte("an-existing-validator-pubkey-000000000")
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{{PublicKey: pub}},
		Balances:   []primitives.Gwei{32000000000},
	}
	deposit := &primitives.Deposit{
		Data: &primitives.DepositData{PublicKey: pub, Amount: 1000000000},
	}

	require.NoError(t, ProcessDeposits(cfg, st, []*primitives.Deposit{deposit}, false))
	require.Len(t, st.Validators, 1, "a deposit matching an existing pubkey must not register a new validator")
	require.Equal(t, primitives.Gwei(33000000000), st.Balances[0])
	require.Equal(t, uint64(1), st.Eth1DepositIndex)
}

func TestProcessDeposits_RegistersNewValidatorWithoutActivation(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{}
	deposit := &primitives.Deposit{
		Data: &primitives.DepositData{
			PublicKey:             []byte("a-brand-new-validator-pubkey-00000000"),
			WithdrawalCredentials: make([]byte, 32),
			Amount:                32000000000,
			Signature:             make([]byte, 96),
		},
	}

	require.NoError(t, ProcessDeposits(cfg, st, []*primitives.Deposit{deposit}, false))
	require.Len(t, st.Validators, 1)
	require.Equal(t, primitives.Epoch(cfg.FarFutureEpoch), st.Validators[0].ActivationEpoch,
		"a new validator is only queued for activation during registry updates, not at deposit time")
	require.Len(t, st.Balances, 1)
	require.Len(t, st.CurrentEpochParticipation, 1)
	require.Len(t, st.PreviousEpochParticipation, 1)
	require.Len(t, st.InactivityScores, 1)
}

func TestProcessDeposits_InvalidSignatureStillCreditsDeposit(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{}
	// Zeroed signature bytes fail BLS deserialization/verification; the
	// deposit contract already accepted the funds, so it must still be
	// credited rather than rejecting the whole block.
	deposit := &primitives.Deposit{
		Data: &primitives.DepositData{
			PublicKey:             []byte("another-new-validator-pubkey-0000000"),
			WithdrawalCredentials: make([]byte, 32),
			Amount:                32000000000,
			Signature:             make([]byte, 96),
		},
	}

	require.NoError(t, ProcessDeposits(cfg, st, []*primitives.Deposit{deposit}, false))
	require.Len(t, st.Validators, 1)
	require.Equal(t, primitives.Gwei(0), st.Validators[0].EffectiveBalance,
		"a validator whose deposit signature could not be verified is registered with zero effective balance")
	require.Equal(t, primitives.Gwei(32000000000), st.Balances[0])
}

func TestProcessDeposits_ExceedsMaxIsCaughtByProcessOperations(t *testing.T) {
	cfg := params.MinimalConfig()
	cfg.MaxDeposits = 1
	st := &primitives.BeaconState{}
	body := &primitives.BeaconBlockBody{
		Deposits: []*primitives.Deposit{
			{Data: &primitives.DepositData{PublicKey: []byte("p1"), Signature: make([]byte, 96), WithdrawalCredentials: make([]byte, 32)}},
			{Data: &primitives.DepositData{PublicKey: []byte("p2"), Signature: make([]byte, 96), WithdrawalCredentials: make([]byte, 32)}},
		},
	}

	err := ProcessOperations(cfg, st, body, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max deposits")
}
