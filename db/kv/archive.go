package kv

import (
	"encoding/binary"

	"go.etcd.io/bbolt"
)

// archiveKey byte-sortably encodes (slot, root) so a cursor range-scan over
// the archive bucket visits archived points in slot order, matching the
// teacher's fixed-width-prefix index convention.
func archiveKey(slot uint64, root [32]byte) []byte {
	key := make([]byte, 8+32)
	binary.BigEndian.PutUint64(key[:8], slot)
	copy(key[8:], root[:])
	return key
}

// SaveArchivedPoint records that root was canonical at slot, under
// archive/<slot>/<root> (spec.md §6 key space).
func (s *Store) SaveArchivedPoint(slot uint64, root [32]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(archiveBucket).Put(archiveKey(slot, root), []byte{1})
	})
}

// ArchivedRootAtSlot returns the root archived at exactly slot, or the zero
// root if none was recorded.
func (s *Store) ArchivedRootAtSlot(slot uint64) ([32]byte, error) {
	var root [32]byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(archiveBucket).Cursor()
		prefix := make([]byte, 8)
		binary.BigEndian.PutUint64(prefix, slot)
		for k, _ := c.Seek(prefix); k != nil; k, _ = c.Next() {
			if len(k) != len(prefix)+32 {
				break
			}
			if binary.BigEndian.Uint64(k[:8]) != slot {
				break
			}
			copy(root[:], k[8:])
			return nil
		}
		return nil
	})
	return root, err
}
