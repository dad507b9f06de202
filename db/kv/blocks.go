package kv

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"go.etcd.io/bbolt"

	"github.com/lightcrest/beacon-chain/primitives"
)

// SaveBlock persists signed under block/<root>. Blocks are immutable once
// accepted (spec.md §3 lifecycle), so this never overwrites an existing key
// with different bytes; callers are expected to have already deduplicated.
func (s *Store) SaveBlock(root [32]byte, signed *primitives.SignedBeaconBlock) error {
	enc, err := ssz.Marshal(signed)
	if err != nil {
		return errors.Wrap(err, "could not marshal signed block")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(root[:], enc)
	})
}

// Block retrieves the block stored under root, or nil if absent.
func (s *Store) Block(root [32]byte) (*primitives.SignedBeaconBlock, error) {
	if v, ok := s.blockCache.Get(root); ok {
		return v.(*primitives.SignedBeaconBlock), nil
	}
	var block *primitives.SignedBeaconBlock
	err := s.db.View(func(tx *bbolt.Tx) error {
		enc := tx.Bucket(blocksBucket).Get(root[:])
		if enc == nil {
			return nil
		}
		block = &primitives.SignedBeaconBlock{}
		return ssz.Unmarshal(enc, block)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not unmarshal block")
	}
	if block != nil {
		s.blockCache.Set(root, block, int64(len(root)))
	}
	return block, nil
}

// HasBlock reports whether root has a stored block.
func (s *Store) HasBlock(root [32]byte) (bool, error) {
	var has bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		has = tx.Bucket(blocksBucket).Get(root[:]) != nil
		return nil
	})
	return has, err
}

// SaveHeadBlockRoot records root as the current canonical head, under the
// `head` key space spec.md §6 names.
func (s *Store) SaveHeadBlockRoot(root [32]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(chainInfoBucket).Put(headKey, root[:])
	})
}

// HeadBlockRoot returns the currently recorded head root, or the zero root
// if none has been saved yet.
func (s *Store) HeadBlockRoot() ([32]byte, error) {
	var root [32]byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(chainInfoBucket).Get(headKey)
		copy(root[:], v)
		return nil
	})
	return root, err
}
