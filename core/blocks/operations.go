package blocks

import (
	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessOperations validates the per-block operation-count ceilings and
// then applies each operation kind to state, in the order the protocol
// defines: proposer slashings, attester slashings, attestations, deposits,
// voluntary exits, and finally the sync aggregate. Execution-payload
// consistency is checked by the caller after ProcessOperations returns,
// since it gates block acceptance independently of any operation list here.
func ProcessOperations(cfg *params.BeaconChainConfig, state *primitives.BeaconState, body *primitives.BeaconBlockBody, verifySignatures bool) error {
	if uint64(len(body.ProposerSlashings)) > cfg.MaxProposerSlashings {
		return errors.New("block exceeds max proposer slashings")
	}
	if uint64(len(body.AttesterSlashings)) > cfg.MaxAttesterSlashings {
		return errors.New("block exceeds max attester slashings")
	}
	if uint64(len(body.Attestations)) > cfg.MaxAttestations {
		return errors.New("block exceeds max attestations")
	}
	if uint64(len(body.Deposits)) > cfg.MaxDeposits {
		return errors.New("block exceeds max deposits")
	}
	if uint64(len(body.VoluntaryExits)) > cfg.MaxVoluntaryExits {
		return errors.New("block exceeds max voluntary exits")
	}

	if err := ProcessProposerSlashings(cfg, state, body.ProposerSlashings, verifySignatures); err != nil {
		return errors.Wrap(err, "could not process proposer slashings")
	}
	if err := ProcessAttesterSlashings(cfg, state, body.AttesterSlashings, verifySignatures); err != nil {
		return errors.Wrap(err, "could not process attester slashings")
	}
	if err := ProcessAttestations(cfg, state, body.Attestations, verifySignatures); err != nil {
		return errors.Wrap(err, "could not process attestations")
	}
	if err := ProcessDeposits(cfg, state, body.Deposits, verifySignatures); err != nil {
		return errors.Wrap(err, "could not process deposits")
	}
	if err := ProcessVoluntaryExits(cfg, state, body.VoluntaryExits, verifySignatures); err != nil {
		return errors.Wrap(err, "could not process voluntary exits")
	}
	if body.SyncAggregate != nil {
		if err := ProcessSyncAggregate(cfg, state, body.SyncAggregate, verifySignatures); err != nil {
			return errors.Wrap(err, "could not process sync aggregate")
		}
	}
	return nil
}
