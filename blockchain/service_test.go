package blockchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/db/kv"
	"github.com/lightcrest/beacon-chain/execution"
	"github.com/lightcrest/beacon-chain/forkchoice"
	"github.com/lightcrest/beacon-chain/operations"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

type fakeEngine struct{}

func (fakeEngine) NewPayload(ctx context.Context, payload *primitives.ExecutionPayload) (execution.PayloadStatus, error) {
	return execution.Valid, nil
}

func (fakeEngine) ForkchoiceUpdated(ctx context.Context, head, finalized [32]byte, attrs *execution.PayloadAttributes) (*execution.PayloadID, error) {
	return nil, nil
}

func setupService(t *testing.T) (*Service, [32]byte) {
	t.Helper()
	cfg := params.MinimalConfig()
	store, err := kv.NewKVStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	var genesisRoot [32]byte
	genesisRoot[0] = 1
	genesisState := &primitives.BeaconState{
		Slot:                       0,
		Validators:                 []*primitives.Validator{},
		CurrentJustifiedCheckpoint: &primitives.Checkpoint{Epoch: 0, Root: genesisRoot[:]},
		FinalizedCheckpoint:        &primitives.Checkpoint{Epoch: 0, Root: genesisRoot[:]},
	}

	fc := forkchoice.NewGenesisStore(cfg, genesisRoot)
	pool := operations.NewPool()

	svc, err := NewService(&Config{
		BeaconConfig:    cfg,
		Database:        store,
		ForkChoiceStore: fc,
		OperationPool:   pool,
		ExecutionEngine: fakeEngine{},
		GenesisTime:     1000,
	}, genesisRoot, genesisState)
	require.NoError(t, err)
	return svc, genesisRoot
}

func TestService_HeadAccessorsReflectGenesis(t *testing.T) {
	svc, genesisRoot := setupService(t)
	require.Equal(t, genesisRoot, svc.HeadRoot())
	require.Equal(t, uint64(0), svc.HeadSlot())
	require.NotNil(t, svc.HeadState())
	require.Equal(t, uint64(1000), svc.GenesisTime())
}

func TestService_ReceiveBlock_UnknownParentIsPreconditionMissing(t *testing.T) {
	svc, _ := setupService(t)

	var unknownParent [32]byte
	unknownParent[0] = 99
	signed := &primitives.SignedBeaconBlock{
		Block: &primitives.BeaconBlock{
			Slot:       1,
			ParentRoot: unknownParent[:],
			StateRoot:  make([]byte, 32),
			Body: &primitives.BeaconBlockBody{
				RandaoReveal: make([]byte, 96),
				Eth1Data:     &primitives.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)},
				Graffiti:     make([]byte, 32),
			},
		},
		Signature: make([]byte, 96),
	}

	err := svc.ReceiveBlock(context.Background(), signed)
	require.Error(t, err)
	var missing *PreconditionMissingError
	require.ErrorAs(t, err, &missing)

	root, rErr := blockRoot(signed.Block)
	require.NoError(t, rErr)
	require.False(t, svc.badBlocks[root], "precondition-missing blocks must not be quarantined")
}

func TestService_Quarantine_MarksBadBlockButNotPreconditionMissing(t *testing.T) {
	svc, _ := setupService(t)
	var root [32]byte
	root[0] = 5

	svc.quarantine(root, &InvalidOperationError{Kind: "block", Reason: "bad header"})
	require.True(t, svc.badBlocks[root])

	has, err := svc.db.IsBadBlock(root)
	require.NoError(t, err)
	require.True(t, has)

	var other [32]byte
	other[0] = 6
	svc.quarantine(other, &PreconditionMissingError{Kind: "parent state"})
	require.False(t, svc.badBlocks[other])
}

func TestService_Subscribe_FansOutHeadEvent(t *testing.T) {
	svc, genesisRoot := setupService(t)

	var got HeadChangedEvent
	svc.Subscribe(&recordingObserver{onHead: func(e HeadChangedEvent) { got = e }})

	svc.observers.emitHead(HeadChangedEvent{NewHeadRoot: [32]byte{7}, OldHeadRoot: genesisRoot})
	require.Equal(t, [32]byte{7}, got.NewHeadRoot)
	require.Equal(t, genesisRoot, got.OldHeadRoot)
}

type recordingObserver struct {
	NoopObserver
	onHead func(HeadChangedEvent)
}

func (r *recordingObserver) OnHead(e HeadChangedEvent) {
	if r.onHead != nil {
		r.onHead(e)
	}
}

func TestService_OnSlot_NoOpWhenHeadUnchanged(t *testing.T) {
	svc, genesisRoot := setupService(t)
	err := svc.OnSlot(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, genesisRoot, svc.HeadRoot())
}
