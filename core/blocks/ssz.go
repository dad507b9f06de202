package blocks

import (
	"github.com/prysmaticlabs/go-ssz"

	"github.com/lightcrest/beacon-chain/primitives"
)

// sszHashTreeRoot and sszSigningRoot centralize the reflection-based go-ssz
// calls this package needs, so every Process* function goes through the
// same two entry points rather than importing go-ssz individually.
func sszHashTreeRoot(v interface{}) ([32]byte, error) {
	return ssz.HashTreeRoot(v)
}

func sszSigningRoot(v interface{}) ([32]byte, error) {
	return ssz.SigningRoot(v)
}

// StateHashTreeRoot exposes sszHashTreeRoot for the post-state root check
// that closes out a full state transition.
func StateHashTreeRoot(state *primitives.BeaconState) ([32]byte, error) {
	return sszHashTreeRoot(state)
}

// HeaderSigningRoot exposes sszSigningRoot for callers outside this package
// that need the signing root of a bare block header, such as the per-slot
// block-root cache update.
func HeaderSigningRoot(h *primitives.BeaconBlockHeader) ([32]byte, error) {
	return sszSigningRoot(h)
}
