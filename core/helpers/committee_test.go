package helpers

import (
	"testing"

	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
)

func TestCommitteeCountAtSlot_BoundsToSlotsPerEpoch(t *testing.T) {
	cfg := params.MinimalConfig()

	require.Equal(t, uint64(1), CommitteeCountAtSlot(cfg, 0), "no active validators still yields at least one committee")
	require.Equal(t, uint64(1), CommitteeCountAtSlot(cfg, 100))

	huge := cfg.SlotsPerEpoch * 128 * (cfg.SlotsPerEpoch + 5)
	require.Equal(t, cfg.SlotsPerEpoch, CommitteeCountAtSlot(cfg, huge), "committee count per slot is capped at SlotsPerEpoch")
}

func TestComputeShuffledIndex_IsAPermutation(t *testing.T) {
	var seed [32]byte
	seed[0] = 1
	const count = 20

	seen := make(map[uint64]bool, count)
	for i := uint64(0); i < count; i++ {
		shuffled, err := ComputeShuffledIndex(i, count, seed, true)
		require.NoError(t, err)
		require.Less(t, shuffled, uint64(count))
		require.False(t, seen[shuffled], "shuffle must not collide")
		seen[shuffled] = true
	}
}

func TestComputeShuffledIndex_ForwardInverseRoundTrip(t *testing.T) {
	var seed [32]byte
	seed[0] = 7
	const count = 12

	for i := uint64(0); i < count; i++ {
		forward, err := ComputeShuffledIndex(i, count, seed, true)
		require.NoError(t, err)
		back, err := ComputeShuffledIndex(forward, count, seed, false)
		require.NoError(t, err)
		require.Equal(t, i, back)
	}
}

func TestComputeShuffledIndex_RejectsOutOfRange(t *testing.T) {
	var seed [32]byte
	_, err := ComputeShuffledIndex(5, 5, seed, true)
	require.Error(t, err)
	_, err = ComputeShuffledIndex(0, 0, seed, true)
	require.Error(t, err)
}

func TestComputeCommittee_PartitionsIndicesExactly(t *testing.T) {
	var seed [32]byte
	seed[0] = 3
	indices := make([]uint64, 30)
	for i := range indices {
		indices[i] = uint64(i)
	}

	seen := make(map[uint64]bool, len(indices))
	const committeeCount = 3
	for c := uint64(0); c < committeeCount; c++ {
		members, err := ComputeCommittee(indices, seed, c, committeeCount)
		require.NoError(t, err)
		for _, m := range members {
			require.False(t, seen[m], "each validator assigned to exactly one committee")
			seen[m] = true
		}
	}
	require.Len(t, seen, len(indices))
}

func TestAttestingIndices_FiltersToSetBits(t *testing.T) {
	committee := []uint64{4, 9, 15}
	bits := bitfield.NewBitlist(3)
	bits.SetBitAt(0, true)
	bits.SetBitAt(2, true)

	got, err := AttestingIndices(bits, committee)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 15}, got)
}

func TestAttestingIndices_RejectsLengthMismatch(t *testing.T) {
	committee := []uint64{1, 2}
	bits := bitfield.NewBitlist(3)
	_, err := AttestingIndices(bits, committee)
	require.Error(t, err)
}

func TestVerifyBitfieldLength(t *testing.T) {
	bits := bitfield.NewBitlist(5)
	require.NoError(t, VerifyBitfieldLength(bits, 5))
	require.Error(t, VerifyBitfieldLength(bits, 6))
}
