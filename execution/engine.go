// Package execution defines the boundary contract toward the external
// execution-engine collaborator (spec.md §6). The consensus core treats
// execution validity as opaque and delegated; this package holds only the
// interface shape, never a transport implementation, per spec.md §1's
// non-goals and §4.1's "execution validity itself is delegated to an
// external execution engine collaborator and is not re-implemented here."
package execution

import (
	"context"

	"github.com/lightcrest/beacon-chain/primitives"
)

// PayloadStatus is the execution engine's verdict on a submitted payload.
type PayloadStatus int

const (
	// Valid means the payload was fully validated and its state is canonical.
	Valid PayloadStatus = iota
	// Invalid means the payload failed execution-layer validation; the
	// block and all its descendants must be rejected (spec.md §7 ExecutionInvalid).
	Invalid
	// Syncing means the engine cannot yet judge the payload because its own
	// execution-layer view is incomplete; the block is accepted optimistically.
	Syncing
)

// PayloadID identifies a payload being built by the engine in response to
// ForkchoiceUpdated, for later retrieval by the block proposer. Out of
// scope for the consensus core itself; carried only as an opaque handle.
type PayloadID [8]byte

// PayloadAttributes parameterizes payload building: timestamp, randao
// mix, and fee recipient for the next slot, supplied by the proposer path.
type PayloadAttributes struct {
	Timestamp             uint64
	PrevRandao             [32]byte
	SuggestedFeeRecipient  [20]byte
}

// Engine is the consensus core's view of the execution engine: two calls,
// matching spec.md §6's "To execution engine" contract exactly.
type Engine interface {
	// NewPayload submits a payload for execution-layer validation. A
	// context deadline exceeded here must surface as ExecutionUnavailable
	// to the caller (spec.md §7), not as Invalid.
	NewPayload(ctx context.Context, payload *primitives.ExecutionPayload) (PayloadStatus, error)

	// ForkchoiceUpdated informs the engine of the new head and finalized
	// block roots, optionally requesting payload building via attrs. A nil
	// attrs means no payload build is requested and the returned PayloadID
	// is always the zero value.
	ForkchoiceUpdated(ctx context.Context, headRoot, finalizedRoot [32]byte, attrs *PayloadAttributes) (*PayloadID, error)
}

// ErrUnavailable is returned by Engine implementations (and wrapped by
// callers) when the engine did not answer in time. It is not a verdict on
// the payload, and callers do not reject the block for it.
type ErrUnavailable struct{ Cause error }

func (e *ErrUnavailable) Error() string {
	if e.Cause == nil {
		return "execution: engine unavailable"
	}
	return "execution: engine unavailable: " + e.Cause.Error()
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }
