package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/primitives"
)

type fakeEngine struct {
	status PayloadStatus
	err    error
}

func (f *fakeEngine) NewPayload(ctx context.Context, payload *primitives.ExecutionPayload) (PayloadStatus, error) {
	return f.status, f.err
}

func (f *fakeEngine) ForkchoiceUpdated(ctx context.Context, head, finalized [32]byte, attrs *PayloadAttributes) (*PayloadID, error) {
	if attrs == nil {
		return nil, nil
	}
	id := PayloadID{1}
	return &id, nil
}

func TestEngine_NewPayloadPropagatesUnavailable(t *testing.T) {
	var e Engine = &fakeEngine{err: &ErrUnavailable{Cause: errors.New("deadline exceeded")}}
	_, err := e.NewPayload(context.Background(), &primitives.ExecutionPayload{})
	var unavailable *ErrUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestEngine_ForkchoiceUpdatedNilAttrsReturnsNoPayloadID(t *testing.T) {
	e := &fakeEngine{status: Valid}
	id, err := e.ForkchoiceUpdated(context.Background(), [32]byte{1}, [32]byte{2}, nil)
	require.NoError(t, err)
	require.Nil(t, id)
}
