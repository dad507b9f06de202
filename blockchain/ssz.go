package blockchain

import (
	"github.com/prysmaticlabs/go-ssz"

	"github.com/lightcrest/beacon-chain/primitives"
)

// blockRoot returns the hash-tree-root of blk, the value used to key the
// fork-choice store, the block database, and the head-root bookkeeping.
func blockRoot(blk *primitives.BeaconBlock) ([32]byte, error) {
	return ssz.HashTreeRoot(blk)
}
