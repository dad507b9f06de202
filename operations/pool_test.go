package operations

import (
	"testing"

	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/primitives"
)

func sampleAttestation(slot uint64, committee uint64) *primitives.Attestation {
	bits := bitfield.NewBitlist(4)
	bits.SetBitAt(0, true)
	return &primitives.Attestation{
		AggregationBits: bits,
		Data: &primitives.AttestationData{
			Slot:           primitives.Slot(slot),
			CommitteeIndex: committee,
			Source:         &primitives.Checkpoint{Epoch: 0, Root: make([]byte, 32)},
			Target:         &primitives.Checkpoint{Epoch: 1, Root: make([]byte, 32)},
		},
		Signature: make([]byte, 96),
	}
}

func TestPool_UnaggregatedDedupAndAggregate(t *testing.T) {
	p := NewPool()
	a1 := sampleAttestation(5, 0)
	a2 := sampleAttestation(5, 0)
	a2.AggregationBits.SetBitAt(1, true)

	require.NoError(t, p.SaveUnaggregatedAttestation(a1))
	require.NoError(t, p.SaveUnaggregatedAttestation(a2))
	require.Len(t, p.UnaggregatedAttestations(), 2)

	require.NoError(t, p.AggregateForForkchoice())
	require.Len(t, p.UnaggregatedAttestations(), 0)

	fc := p.ForkchoiceAttestations()
	require.Len(t, fc, 1)
	require.True(t, fc[0].AggregationBits.BitAt(0))
	require.True(t, fc[0].AggregationBits.BitAt(1))
}

func TestPool_VoluntaryExitDedup(t *testing.T) {
	p := NewPool()
	e := &primitives.SignedVoluntaryExit{
		Exit:      &primitives.VoluntaryExit{Epoch: 10, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	require.NoError(t, p.InsertVoluntaryExit(e))
	require.ErrorIs(t, p.InsertVoluntaryExit(e), ErrAlreadySeen)
	require.Len(t, p.PendingVoluntaryExits(), 1)
}

func TestPool_RemoveIncluded(t *testing.T) {
	p := NewPool()
	e := &primitives.SignedVoluntaryExit{
		Exit:      &primitives.VoluntaryExit{Epoch: 10, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	require.NoError(t, p.InsertVoluntaryExit(e))

	p.RemoveIncluded(&primitives.BeaconBlockBody{VoluntaryExits: []*primitives.SignedVoluntaryExit{e}})
	require.Len(t, p.PendingVoluntaryExits(), 0)
}
