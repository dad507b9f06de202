package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessDeposits verifies each deposit's Merkle proof against the state's
// eth1 deposit root and either tops up an existing validator's balance or
// registers a new one, in deposit-index order.
func ProcessDeposits(cfg *params.BeaconChainConfig, state *primitives.BeaconState, deposits []*primitives.Deposit, verifyProofs bool) error {
	for i, d := range deposits {
		if err := processDeposit(cfg, state, d, verifyProofs); err != nil {
			return errors.Wrapf(err, "deposit %d invalid", i)
		}
	}
	return nil
}

func processDeposit(cfg *params.BeaconChainConfig, state *primitives.BeaconState, d *primitives.Deposit, verifyProofs bool) error {
	if verifyProofs {
		leaf, err := sszHashTreeRoot(d.Data)
		if err != nil {
			return err
		}
		if !verifyMerkleBranch(leaf, d.Proof, 32, state.Eth1DepositIndex, state.Eth1Data.DepositRoot) {
			return errors.New("invalid deposit Merkle proof")
		}
	}
	state.Eth1DepositIndex++

	for i, v := range state.Validators {
		if bytes.Equal(v.PublicKey, d.Data.PublicKey) {
			state.Balances[i] += d.Data.Amount
			return nil
		}
	}

	if !verifyDepositSignature(d.Data) {
		// An invalid deposit signature on a brand-new validator is not a
		// fatal block error: the deposit contract already accepted the
		// deposit, so the chain must still credit it, just without
		// activating a validator that can never produce a valid signature.
		state.Validators = append(state.Validators, &primitives.Validator{
			PublicKey:                  d.Data.PublicKey,
			WithdrawalCredentials:      d.Data.WithdrawalCredentials,
			ActivationEligibilityEpoch: primitives.Epoch(cfg.FarFutureEpoch),
			ActivationEpoch:            primitives.Epoch(cfg.FarFutureEpoch),
			ExitEpoch:                  primitives.Epoch(cfg.FarFutureEpoch),
			WithdrawableEpoch:          primitives.Epoch(cfg.FarFutureEpoch),
			EffectiveBalance:           0,
		})
		state.Balances = append(state.Balances, d.Data.Amount)
		state.CurrentEpochParticipation = append(state.CurrentEpochParticipation, 0)
		state.PreviousEpochParticipation = append(state.PreviousEpochParticipation, 0)
		state.InactivityScores = append(state.InactivityScores, 0)
		return nil
	}

	effective := uint64(d.Data.Amount) - uint64(d.Data.Amount)%cfg.EffectiveBalanceIncrement
	if effective > cfg.MaxEffectiveBalance {
		effective = cfg.MaxEffectiveBalance
	}
	state.Validators = append(state.Validators, &primitives.Validator{
		PublicKey:                  d.Data.PublicKey,
		WithdrawalCredentials:      d.Data.WithdrawalCredentials,
		ActivationEligibilityEpoch: primitives.Epoch(cfg.FarFutureEpoch),
		ActivationEpoch:            primitives.Epoch(cfg.FarFutureEpoch),
		ExitEpoch:                  primitives.Epoch(cfg.FarFutureEpoch),
		WithdrawableEpoch:          primitives.Epoch(cfg.FarFutureEpoch),
		EffectiveBalance:           primitives.Gwei(effective),
	})
	state.Balances = append(state.Balances, d.Data.Amount)
	state.CurrentEpochParticipation = append(state.CurrentEpochParticipation, 0)
	state.PreviousEpochParticipation = append(state.PreviousEpochParticipation, 0)
	state.InactivityScores = append(state.InactivityScores, 0)
	return nil
}

func verifyDepositSignature(data *primitives.DepositData) bool {
	pub, err := bls.PublicKeyFromBytes(data.PublicKey)
	if err != nil {
		return false
	}
	sig, err := bls.SignatureFromBytes(data.Signature)
	if err != nil {
		return false
	}
	root, err := sszSigningRoot(&primitives.DepositData{
		PublicKey:             data.PublicKey,
		WithdrawalCredentials: data.WithdrawalCredentials,
		Amount:                data.Amount,
	})
	if err != nil {
		return false
	}
	return bls.Verify(pub, root[:], sig)
}

// verifyMerkleBranch checks that leaf, combined with the sibling hashes in
// proof, reduces to root at the given generalized index depth.
func verifyMerkleBranch(leaf [32]byte, proof [][]byte, depth uint64, index uint64, root []byte) bool {
	node := leaf
	for i := uint64(0); i < depth; i++ {
		sibling := proof[i]
		if (index>>i)&1 == 1 {
			node = hashPair(sibling, node[:])
		} else {
			node = hashPair(node[:], sibling)
		}
	}
	return bytes.Equal(node[:], root)
}

func hashPair(a, b []byte) [32]byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, a...)
	buf = append(buf, b...)
	return hashutil.Hash(buf)
}
