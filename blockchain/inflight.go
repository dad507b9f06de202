package blockchain

import (
	"github.com/lightcrest/beacon-chain/primitives"
)

// inFlight carries one block through the four-phase receive pipeline:
// validate, transition, persist, publish. This replaces the source's
// promise-chained mutation (spec.md §9 DESIGN NOTES): rather than
// interleaving persistence and in-memory mutation through async
// continuations, each phase takes ownership of the record, advances it, and
// either returns it to the next phase or drops it atomically on failure —
// no partial state is ever visible to a reader between phases.
type inFlight struct {
	root       [32]byte
	parentRoot [32]byte
	signed     *primitives.SignedBeaconBlock

	preState  *primitives.BeaconState
	postState *primitives.BeaconState

	justified *primitives.Checkpoint
	finalized *primitives.Checkpoint
}

// phase is one stage of the pipeline. Each phase either returns the
// advanced record or an error that drops it.
type phase func(*inFlight) error

// runPipeline drives rec through phases in order, stopping at the first
// error. The record is never shared outside the calling goroutine, so no
// locking is needed between phases themselves — only the Service-level
// methods each phase calls into take the writer lock.
func runPipeline(rec *inFlight, phases ...phase) error {
	for _, p := range phases {
		if err := p(rec); err != nil {
			return err
		}
	}
	return nil
}
