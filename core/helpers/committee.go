package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"
	bitfield "github.com/prysmaticlabs/go-bitfield"

	"github.com/lightcrest/beacon-chain/cache"
	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// CommitteeCountAtSlot returns the number of committees active at slot.
func CommitteeCountAtSlot(cfg *params.BeaconChainConfig, activeValidatorCount uint64) uint64 {
	committeesPerSlot := activeValidatorCount / cfg.SlotsPerEpoch / uint64(maxCommitteeTargetSize(cfg))
	if committeesPerSlot > cfg.SlotsPerEpoch {
		committeesPerSlot = cfg.SlotsPerEpoch
	}
	if committeesPerSlot < 1 {
		committeesPerSlot = 1
	}
	return committeesPerSlot
}

// maxCommitteeTargetSize is the spec's TARGET_COMMITTEE_SIZE (128),
// reproduced here rather than in BeaconChainConfig since no other
// component needs to tune it independently of the churn/activation knobs.
func maxCommitteeTargetSize(_ *params.BeaconChainConfig) uint64 { return 128 }

// BeaconCommittee returns the validator indices assigned to the committee
// at (slot, committeeIndex).
func BeaconCommittee(cfg *params.BeaconChainConfig, state *primitives.BeaconState, slot uint64, committeeIndex uint64, committeeCache *cache.CommitteeCache) ([]uint64, error) {
	epoch := SlotToEpoch(cfg, slot)
	indices, err := ActiveValidatorIndices(state, epoch, committeeCache)
	if err != nil {
		return nil, errors.Wrap(err, "could not get active indices")
	}

	seed, err := Seed(cfg, state, epoch, cfg.DomainBeaconAttester)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate seed")
	}

	committeesPerSlot := CommitteeCountAtSlot(cfg, uint64(len(indices)))
	committeeCount := committeesPerSlot * cfg.SlotsPerEpoch
	index := (slot%cfg.SlotsPerEpoch)*committeesPerSlot + committeeIndex

	return ComputeCommittee(indices, seed, index, committeeCount)
}

// ComputeCommittee splits the shuffled index set into committeeCount equal
// slices and returns the index-th one.
func ComputeCommittee(indices []uint64, seed [32]byte, index, committeeCount uint64) ([]uint64, error) {
	validatorCount := uint64(len(indices))
	start := (validatorCount * index) / committeeCount
	end := (validatorCount * (index + 1)) / committeeCount

	shuffled := make([]uint64, end-start)
	for i := start; i < end; i++ {
		shuffledIndex, err := ComputeShuffledIndex(i, validatorCount, seed, true)
		if err != nil {
			return nil, err
		}
		shuffled[i-start] = indices[shuffledIndex]
	}
	return shuffled, nil
}

const shuffleRounds = 90

// ComputeShuffledIndex applies the swap-or-not shuffle to index within a
// list of indexCount elements under seed. When forward is true this
// computes the forward permutation (index -> shuffled position);
// otherwise the inverse.
func ComputeShuffledIndex(index, indexCount uint64, seed [32]byte, forward bool) (uint64, error) {
	if indexCount == 0 {
		return 0, errors.New("index count must be greater than 0")
	}
	if index >= indexCount {
		return 0, errors.Errorf("index %d out of range for count %d", index, indexCount)
	}

	rounds := byte(shuffleRounds)
	var pipeIndex byte
	pipeStart, pipeEnd := byte(0), rounds-1
	if !forward {
		pipeStart, pipeEnd = pipeEnd, pipeStart
	}
	step := int8(1)
	if !forward {
		step = -1
	}

	for r := int(pipeStart); ; r += int(step) {
		pipeIndex = byte(r)
		pivot := hashRoundPivot(seed, pipeIndex, indexCount)
		flip := (pivot + indexCount - index) % indexCount
		position := index
		if flip > position {
			position = flip
		}
		source := hashRoundSource(seed, pipeIndex, position)
		byteV := source[(position%256)/8]
		bitV := (byteV >> (position % 8)) & 1
		if bitV == 1 {
			index = flip
		}
		if r == int(pipeEnd) {
			break
		}
	}
	return index, nil
}

func hashRoundPivot(seed [32]byte, round byte, indexCount uint64) uint64 {
	b := append(append([]byte{}, seed[:]...), round)
	h := hashutil.Hash(b)
	return binary.LittleEndian.Uint64(h[:8]) % indexCount
}

func hashRoundSource(seed [32]byte, round byte, position uint64) [32]byte {
	posBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(posBytes, uint32(position/256))
	b := append(append([]byte{}, seed[:]...), round)
	b = append(b, posBytes...)
	return hashutil.Hash(b)
}

// AttestingIndices returns the subset of committee whose corresponding
// aggregation bit is set.
func AttestingIndices(bits bitfield.Bitlist, committee []uint64) ([]uint64, error) {
	if bits.Len() != uint64(len(committee)) {
		return nil, errors.Errorf("bitfield length %d does not match committee length %d", bits.Len(), len(committee))
	}
	indices := make([]uint64, 0, len(committee))
	for i, idx := range committee {
		if bits.BitAt(uint64(i)) {
			indices = append(indices, idx)
		}
	}
	return indices, nil
}

// VerifyBitfieldLength checks that bits has exactly committeeSize bits.
func VerifyBitfieldLength(bits bitfield.Bitlist, committeeSize uint64) error {
	if bits.Len() != committeeSize {
		return errors.Errorf("bitfield length %d does not match committee size %d", bits.Len(), committeeSize)
	}
	return nil
}
