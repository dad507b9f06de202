// Package hashutil wraps the SHA-256 implementation used for randao mixing
// and seed derivation.
package hashutil

import sha256 "github.com/minio/sha256-simd"

// Hash returns the SHA-256 digest of data.
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HashProto hashes the protobuf-marshaled form of m, used to deduplicate
// operations (e.g. transfers, deposits) by content.
func HashProto(m interface{ Marshal() ([]byte, error) }) ([32]byte, error) {
	enc, err := m.Marshal()
	if err != nil {
		return [32]byte{}, err
	}
	return Hash(enc), nil
}
