package kv

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"go.etcd.io/bbolt"

	"github.com/lightcrest/beacon-chain/primitives"
)

// SaveJustifiedCheckpoint persists cp under checkpoint/justified.
func (s *Store) SaveJustifiedCheckpoint(cp *primitives.Checkpoint) error {
	return s.saveCheckpoint(justifiedCheckptKey, cp)
}

// JustifiedCheckpoint returns the last-saved justified checkpoint, or nil
// if none has been saved yet.
func (s *Store) JustifiedCheckpoint() (*primitives.Checkpoint, error) {
	return s.checkpoint(justifiedCheckptKey)
}

// SaveFinalizedCheckpoint persists cp under checkpoint/finalized.
func (s *Store) SaveFinalizedCheckpoint(cp *primitives.Checkpoint) error {
	return s.saveCheckpoint(finalizedCheckptKey, cp)
}

// FinalizedCheckpoint returns the last-saved finalized checkpoint, or nil
// if none has been saved yet.
func (s *Store) FinalizedCheckpoint() (*primitives.Checkpoint, error) {
	return s.checkpoint(finalizedCheckptKey)
}

func (s *Store) saveCheckpoint(key []byte, cp *primitives.Checkpoint) error {
	enc, err := ssz.Marshal(cp)
	if err != nil {
		return errors.Wrap(err, "could not marshal checkpoint")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(checkpointBucket).Put(key, enc)
	})
}

func (s *Store) checkpoint(key []byte) (*primitives.Checkpoint, error) {
	var cp *primitives.Checkpoint
	err := s.db.View(func(tx *bbolt.Tx) error {
		enc := tx.Bucket(checkpointBucket).Get(key)
		if enc == nil {
			return nil
		}
		cp = &primitives.Checkpoint{}
		return ssz.Unmarshal(enc, cp)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not unmarshal checkpoint")
	}
	return cp, nil
}
