package blockchain

// HeadChangedEvent carries the new and previous head roots. ReorgDepth is
// not computed by Service: every HeadChangedEvent it emits has ReorgDepth
// zero.
type HeadChangedEvent struct {
	NewHeadRoot [32]byte
	OldHeadRoot [32]byte
	ReorgDepth  uint64
}

// CheckpointEvent carries a newly justified or finalized checkpoint.
type CheckpointEvent struct {
	Epoch uint64
	Root  [32]byte
}

// BlockProcessedEvent reports that a block finished the receive pipeline,
// successfully or not.
type BlockProcessedEvent struct {
	Root  [32]byte
	Slot  uint64
	Error error
}

// AttestationProcessedEvent reports that an attestation was applied to the
// fork-choice store.
type AttestationProcessedEvent struct {
	ValidatorIndices []uint64
	TargetRoot       [32]byte
}

// Observer is the capability set the orchestrator invokes synchronously on
// its own writer task. This replaces the source's event-emitter-inheritance
// pattern (spec.md §9 DESIGN NOTES): there is no base class and no dynamic
// dispatch beyond this explicit interface boundary. A subscriber that only
// cares about one event kind leaves the other methods empty.
type Observer interface {
	OnHead(HeadChangedEvent)
	OnJustified(CheckpointEvent)
	OnFinalized(CheckpointEvent)
	OnBlockProcessed(BlockProcessedEvent)
	OnAttestationProcessed(AttestationProcessedEvent)
}

// NoopObserver implements Observer with empty methods, so subscribers can
// embed it and override only what they need.
type NoopObserver struct{}

func (NoopObserver) OnHead(HeadChangedEvent)                       {}
func (NoopObserver) OnJustified(CheckpointEvent)                   {}
func (NoopObserver) OnFinalized(CheckpointEvent)                   {}
func (NoopObserver) OnBlockProcessed(BlockProcessedEvent)          {}
func (NoopObserver) OnAttestationProcessed(AttestationProcessedEvent) {}

// registry holds the subscribed observers and fans events out to all of
// them in registration order. Not safe for concurrent registration; callers
// register observers during setup, before the writer task starts running.
type registry struct {
	subs []Observer
}

func (r *registry) Subscribe(o Observer) {
	r.subs = append(r.subs, o)
}

func (r *registry) emitHead(e HeadChangedEvent) {
	for _, s := range r.subs {
		s.OnHead(e)
	}
}

func (r *registry) emitJustified(e CheckpointEvent) {
	for _, s := range r.subs {
		s.OnJustified(e)
	}
}

func (r *registry) emitFinalized(e CheckpointEvent) {
	for _, s := range r.subs {
		s.OnFinalized(e)
	}
}

func (r *registry) emitBlockProcessed(e BlockProcessedEvent) {
	for _, s := range r.subs {
		s.OnBlockProcessed(e)
	}
}

func (r *registry) emitAttestationProcessed(e AttestationProcessedEvent) {
	for _, s := range r.subs {
		s.OnAttestationProcessed(e)
	}
}
