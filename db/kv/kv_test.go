package kv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/primitives"
)

func setupDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestStore_SaveAndRetrieveBlock(t *testing.T) {
	s := setupDB(t)
	var root [32]byte
	root[0] = 7

	block := &primitives.SignedBeaconBlock{
		Block: &primitives.BeaconBlock{
			Slot:       5,
			ParentRoot: make([]byte, 32),
			StateRoot:  make([]byte, 32),
			Body:       &primitives.BeaconBlockBody{RandaoReveal: make([]byte, 96), Eth1Data: &primitives.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)}, Graffiti: make([]byte, 32)},
		},
		Signature: make([]byte, 96),
	}
	require.NoError(t, s.SaveBlock(root, block))

	got, err := s.Block(root)
	require.NoError(t, err)
	require.Equal(t, uint64(5), uint64(got.Block.Slot))

	has, err := s.HasBlock(root)
	require.NoError(t, err)
	require.True(t, has)

	missing, err := s.Block([32]byte{99})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStore_HeadBlockRoot(t *testing.T) {
	s := setupDB(t)
	var root [32]byte
	root[0] = 3
	require.NoError(t, s.SaveHeadBlockRoot(root))

	got, err := s.HeadBlockRoot()
	require.NoError(t, err)
	require.Equal(t, root, got)
}

func TestStore_BadBlockMarking(t *testing.T) {
	s := setupDB(t)
	var root [32]byte
	root[0] = 42

	bad, err := s.IsBadBlock(root)
	require.NoError(t, err)
	require.False(t, bad)

	require.NoError(t, s.MarkBadBlock(root))
	bad, err = s.IsBadBlock(root)
	require.NoError(t, err)
	require.True(t, bad)
}

func TestStore_CheckpointRoundTrip(t *testing.T) {
	s := setupDB(t)
	cp := &primitives.Checkpoint{Epoch: 3, Root: make([]byte, 32)}
	require.NoError(t, s.SaveJustifiedCheckpoint(cp))

	got, err := s.JustifiedCheckpoint()
	require.NoError(t, err)
	require.Equal(t, primitives.Epoch(3), got.Epoch)
}

func TestStore_ArchivedRootAtSlot(t *testing.T) {
	s := setupDB(t)
	var root [32]byte
	root[0] = 11
	require.NoError(t, s.SaveArchivedPoint(100, root))

	got, err := s.ArchivedRootAtSlot(100)
	require.NoError(t, err)
	require.Equal(t, root, got)

	none, err := s.ArchivedRootAtSlot(101)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, none)
}
