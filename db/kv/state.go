package kv

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"go.etcd.io/bbolt"

	"github.com/lightcrest/beacon-chain/primitives"
)

// SaveState persists state under state/<root>, keyed by the root of the
// block whose processing produced it (spec.md §6 key space "state/<root>").
func (s *Store) SaveState(root [32]byte, state *primitives.BeaconState) error {
	enc, err := ssz.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "could not marshal state")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(statesBucket).Put(root[:], enc)
	})
}

// State retrieves the state stored under root, or nil if not reconstructable
// directly; callers must replay from the nearest snapshot in that case
// (spec.md §3 "older states are reconstructible by replay").
func (s *Store) State(root [32]byte) (*primitives.BeaconState, error) {
	var state *primitives.BeaconState
	err := s.db.View(func(tx *bbolt.Tx) error {
		enc := tx.Bucket(statesBucket).Get(root[:])
		if enc == nil {
			return nil
		}
		state = &primitives.BeaconState{}
		return ssz.Unmarshal(enc, state)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not unmarshal state")
	}
	return state, nil
}

// HasState reports whether root has a stored state.
func (s *Store) HasState(root [32]byte) (bool, error) {
	var has bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		has = tx.Bucket(statesBucket).Get(root[:]) != nil
		return nil
	})
	return has, err
}
