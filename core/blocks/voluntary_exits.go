package blocks

import (
	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessVoluntaryExits verifies and applies each signed voluntary exit.
func ProcessVoluntaryExits(cfg *params.BeaconChainConfig, state *primitives.BeaconState, exits []*primitives.SignedVoluntaryExit, verifySignatures bool) error {
	for i, e := range exits {
		if err := verifyVoluntaryExit(cfg, state, e, verifySignatures); err != nil {
			return errors.Wrapf(err, "voluntary exit %d invalid", i)
		}
		v := state.Validators[e.Exit.ValidatorIndex]
		if err := initiateExitDuringBlockProcessing(cfg, state, v, helpers.CurrentEpoch(cfg, uint64(state.Slot))); err != nil {
			return err
		}
	}
	return nil
}

func verifyVoluntaryExit(cfg *params.BeaconChainConfig, state *primitives.BeaconState, e *primitives.SignedVoluntaryExit, verifySignatures bool) error {
	if int(e.Exit.ValidatorIndex) >= len(state.Validators) {
		return errors.New("validator index out of range")
	}
	v := state.Validators[e.Exit.ValidatorIndex]
	currentEpoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))
	if !helpers.IsActiveValidator(v, currentEpoch) {
		return errors.New("validator is not active")
	}
	if v.ExitEpoch != primitives.Epoch(cfg.FarFutureEpoch) {
		return errors.New("validator has already initiated exit")
	}
	if currentEpoch < uint64(e.Exit.Epoch) {
		return errors.New("exit epoch is in the future")
	}
	minActivePeriod := uint64(5) // SHARD_COMMITTEE_PERIOD-equivalent minimum active epochs before voluntary exit
	if currentEpoch < uint64(v.ActivationEpoch)+minActivePeriod {
		return errors.New("validator has not been active long enough to exit")
	}
	if !verifySignatures {
		return nil
	}
	pub, err := bls.PublicKeyFromBytes(v.PublicKey)
	if err != nil {
		return err
	}
	sig, err := bls.SignatureFromBytes(e.Signature)
	if err != nil {
		return err
	}
	domain := helpers.Domain(state.Fork, uint64(e.Exit.Epoch), cfg.DomainVoluntaryExit)
	root, err := signingRootWithDomain(e.Exit, domain)
	if err != nil {
		return err
	}
	if !bls.Verify(pub, root[:], sig) {
		return errors.New("invalid voluntary exit signature")
	}
	return nil
}
