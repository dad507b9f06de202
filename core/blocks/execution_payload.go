package blocks

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessExecutionPayload checks the attached execution payload for
// consistency against the latest execution payload header: parent-hash
// chaining (when the previous header has a block hash) and a timestamp equal
// to genesisTime + slot*SecondsPerSlot. The payload's own block hash is not
// cross-checked; it is stored as part of the new latest header. Execution
// validity itself — state transition of the execution-layer block — is
// delegated to an external execution engine collaborator and is
// deliberately not re-implemented here.
func ProcessExecutionPayload(cfg *params.BeaconChainConfig, state *primitives.BeaconState, genesisTime uint64, payload *primitives.ExecutionPayload) error {
	if payload == nil || payload.Header == nil {
		return errors.New("missing execution payload")
	}
	prev := state.LatestExecutionPayloadHeader
	if prev != nil && len(prev.BlockHash) > 0 {
		if !bytes.Equal(payload.Header.ParentHash, prev.BlockHash) {
			return errors.New("execution payload parent hash does not chain from previous header")
		}
	}

	expectedTimestamp := genesisTime + uint64(state.Slot)*cfg.SecondsPerSlot
	if payload.Header.Timestamp != expectedTimestamp {
		return errors.New("execution payload timestamp does not match slot clock")
	}

	state.LatestExecutionPayloadHeader = payload.Header
	return nil
}
