package kv

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"go.etcd.io/bbolt"

	"github.com/lightcrest/beacon-chain/primitives"
)

// SaveBlockAndState persists a newly accepted block, its post-state, and
// (when non-nil) updated justified/finalized checkpoints in a single bbolt
// transaction, satisfying spec.md §4.3's "persist block+state+checkpoint
// marks in one atomic batch" requirement: either every write lands, or
// (on error) none does, since bbolt transactions are all-or-nothing.
func (s *Store) SaveBlockAndState(root [32]byte, signed *primitives.SignedBeaconBlock, state *primitives.BeaconState, justified, finalized *primitives.Checkpoint) error {
	blockEnc, err := ssz.Marshal(signed)
	if err != nil {
		return errors.Wrap(err, "could not marshal signed block")
	}
	stateEnc, err := ssz.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "could not marshal state")
	}
	var justifiedEnc, finalizedEnc []byte
	if justified != nil {
		if justifiedEnc, err = ssz.Marshal(justified); err != nil {
			return errors.Wrap(err, "could not marshal justified checkpoint")
		}
	}
	if finalized != nil {
		if finalizedEnc, err = ssz.Marshal(finalized); err != nil {
			return errors.Wrap(err, "could not marshal finalized checkpoint")
		}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(blocksBucket).Put(root[:], blockEnc); err != nil {
			return err
		}
		if err := tx.Bucket(statesBucket).Put(root[:], stateEnc); err != nil {
			return err
		}
		if justifiedEnc != nil {
			if err := tx.Bucket(checkpointBucket).Put(justifiedCheckptKey, justifiedEnc); err != nil {
				return err
			}
		}
		if finalizedEnc != nil {
			if err := tx.Bucket(checkpointBucket).Put(finalizedCheckptKey, finalizedEnc); err != nil {
				return err
			}
		}
		return nil
	})
}
