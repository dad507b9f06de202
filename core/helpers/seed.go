package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// Seed returns the randomness seed for epoch under domainType, mixing the
// randao accumulator from MIN_SEED_LOOKAHEAD+1 epochs prior.
func Seed(cfg *params.BeaconChainConfig, state *primitives.BeaconState, epoch uint64, domainType []byte) ([32]byte, error) {
	randaoIndex := (epoch + cfg.EpochsPerHistoricalVector - cfg.MinSeedLookahead - 1) % cfg.EpochsPerHistoricalVector
	if int(randaoIndex) >= len(state.RandaoMixes) {
		return [32]byte{}, errors.New("randao index out of range")
	}
	mix := state.RandaoMixes[randaoIndex]

	epochBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(epochBytes, epoch)

	b := make([]byte, 0, len(domainType)+8+32)
	b = append(b, domainType...)
	b = append(b, epochBytes...)
	b = append(b, mix...)
	return hashutil.Hash(b), nil
}
