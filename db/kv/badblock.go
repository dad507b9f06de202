package kv

import "go.etcd.io/bbolt"

// MarkBadBlock records root under badblock/<root>, per spec.md §4.3's
// bad-block quarantine policy: future blocks descending from a marked root
// are rejected without re-execution.
func (s *Store) MarkBadBlock(root [32]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(badBlockBucket).Put(root[:], []byte{1})
	})
}

// IsBadBlock reports whether root has been marked bad.
func (s *Store) IsBadBlock(root [32]byte) (bool, error) {
	var bad bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bad = tx.Bucket(badBlockBucket).Get(root[:]) != nil
		return nil
	})
	return bad, err
}
