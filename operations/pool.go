// Package operations holds the pending-operation pools the block proposer
// and fork-choice store draw from between blocks: attestations, proposer
// slashings, attester slashings, voluntary exits, and deposits. Every pool
// deduplicates by the operation-specific key spec.md §3 names, mirroring
// the teacher's beacon-chain/operations/attestations.Pool split into
// aggregated/unaggregated/block/forkchoice buckets, generalized here to
// every operation kind the orchestrator accepts.
package operations

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/primitives"
)

// ErrAlreadySeen is returned when an operation's dedup key already exists
// in the pool; callers should treat this as Ignored, not Rejected.
var ErrAlreadySeen = errors.New("operations: already in pool")

// attKey identifies an attestation for dedup purposes: (slot, committee
// index, attestation-data-root), per spec.md §3.
type attKey struct {
	slot      uint64
	committee uint64
	dataRoot  [32]byte
}

// Pool is the single-writer collection of every pending operation kind.
// The chain orchestrator is the only mutator; readers (the proposer
// assembling a block body) take a consistent snapshot under the lock.
type Pool struct {
	mu sync.RWMutex

	unaggregated    map[attKey][]*primitives.Attestation
	aggregated      map[attKey]*primitives.Attestation
	forkchoiceAtts  map[attKey]*primitives.Attestation

	proposerSlashings map[primitives.ValidatorIndex]*primitives.ProposerSlashing
	attesterSlashings map[[2]primitives.ValidatorIndex]*primitives.AttesterSlashing
	voluntaryExits    map[primitives.ValidatorIndex]*primitives.SignedVoluntaryExit
	deposits          map[uint64]*primitives.Deposit // keyed by eth1 deposit index
}

// NewPool returns an empty operation pool.
func NewPool() *Pool {
	return &Pool{
		unaggregated:      make(map[attKey][]*primitives.Attestation),
		aggregated:        make(map[attKey]*primitives.Attestation),
		forkchoiceAtts:    make(map[attKey]*primitives.Attestation),
		proposerSlashings: make(map[primitives.ValidatorIndex]*primitives.ProposerSlashing),
		attesterSlashings: make(map[[2]primitives.ValidatorIndex]*primitives.AttesterSlashing),
		voluntaryExits:    make(map[primitives.ValidatorIndex]*primitives.SignedVoluntaryExit),
		deposits:          make(map[uint64]*primitives.Deposit),
	}
}

func keyFor(att *primitives.Attestation) (attKey, error) {
	if att == nil || att.Data == nil {
		return attKey{}, errors.New("nil attestation or attestation data")
	}
	root, err := sszHashTreeRoot(att.Data)
	if err != nil {
		return attKey{}, errors.Wrap(err, "could not hash attestation data")
	}
	return attKey{slot: uint64(att.Data.Slot), committee: att.Data.CommitteeIndex, dataRoot: root}, nil
}

// SaveUnaggregatedAttestation appends att to its (slot, committee,
// data-root) bucket, so it can later be aggregated by AggregateForForkchoice.
func (p *Pool) SaveUnaggregatedAttestation(att *primitives.Attestation) error {
	k, err := keyFor(att)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unaggregated[k] = append(p.unaggregated[k], att)
	return nil
}

// UnaggregatedAttestations returns every pending unaggregated attestation.
func (p *Pool) UnaggregatedAttestations() []*primitives.Attestation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.Attestation, 0)
	for _, atts := range p.unaggregated {
		out = append(out, atts...)
	}
	return out
}

// SaveAggregatedAttestation stores att as the pool's best aggregate for its
// key, keeping whichever of the existing and new aggregate has more
// attesting bits set.
func (p *Pool) SaveAggregatedAttestation(att *primitives.Attestation) error {
	k, err := keyFor(att)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.aggregated[k]; ok && existing.AggregationBits.Count() >= att.AggregationBits.Count() {
		return nil
	}
	p.aggregated[k] = att
	return nil
}

// AggregatedAttestations returns every pending aggregated attestation.
func (p *Pool) AggregatedAttestations() []*primitives.Attestation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.Attestation, 0, len(p.aggregated))
	for _, a := range p.aggregated {
		out = append(out, a)
	}
	return out
}

// SaveForkchoiceAttestation stores att for the fork-choice store to consume
// on the next OnAttestation sweep.
func (p *Pool) SaveForkchoiceAttestation(att *primitives.Attestation) error {
	k, err := keyFor(att)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forkchoiceAtts[k] = att
	return nil
}

// ForkchoiceAttestations returns and does not clear the pending
// fork-choice-bound attestations.
func (p *Pool) ForkchoiceAttestations() []*primitives.Attestation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.Attestation, 0, len(p.forkchoiceAtts))
	for _, a := range p.forkchoiceAtts {
		out = append(out, a)
	}
	return out
}

// DeleteForkchoiceAttestation removes att once fork-choice has applied it.
func (p *Pool) DeleteForkchoiceAttestation(att *primitives.Attestation) error {
	k, err := keyFor(att)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.forkchoiceAtts, k)
	return nil
}

// InsertProposerSlashing adds a proposer slashing keyed by the offending
// proposer's index; a validator can only be slashed once.
func (p *Pool) InsertProposerSlashing(idx primitives.ValidatorIndex, s *primitives.ProposerSlashing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.proposerSlashings[idx]; ok {
		return ErrAlreadySeen
	}
	p.proposerSlashings[idx] = s
	return nil
}

// PendingProposerSlashings returns every pending proposer slashing.
func (p *Pool) PendingProposerSlashings() []*primitives.ProposerSlashing {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.ProposerSlashing, 0, len(p.proposerSlashings))
	for _, s := range p.proposerSlashings {
		out = append(out, s)
	}
	return out
}

// InsertAttesterSlashing adds an attester slashing keyed by the pair of
// indices involved, sorted so (a,b) and (b,a) collide.
func (p *Pool) InsertAttesterSlashing(a, b primitives.ValidatorIndex, s *primitives.AttesterSlashing) error {
	if a > b {
		a, b = b, a
	}
	k := [2]primitives.ValidatorIndex{a, b}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.attesterSlashings[k]; ok {
		return ErrAlreadySeen
	}
	p.attesterSlashings[k] = s
	return nil
}

// PendingAttesterSlashings returns every pending attester slashing.
func (p *Pool) PendingAttesterSlashings() []*primitives.AttesterSlashing {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.AttesterSlashing, 0, len(p.attesterSlashings))
	for _, s := range p.attesterSlashings {
		out = append(out, s)
	}
	return out
}

// InsertVoluntaryExit adds a voluntary exit keyed by validator index, per
// spec.md §3's "validator index + epoch" dedup key collapsed to index since
// a validator may only submit one live exit at a time.
func (p *Pool) InsertVoluntaryExit(e *primitives.SignedVoluntaryExit) error {
	if e == nil || e.Exit == nil {
		return errors.New("nil voluntary exit")
	}
	idx := e.Exit.ValidatorIndex
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.voluntaryExits[idx]; ok {
		return ErrAlreadySeen
	}
	p.voluntaryExits[idx] = e
	return nil
}

// PendingVoluntaryExits returns every pending voluntary exit.
func (p *Pool) PendingVoluntaryExits() []*primitives.SignedVoluntaryExit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.SignedVoluntaryExit, 0, len(p.voluntaryExits))
	for _, e := range p.voluntaryExits {
		out = append(out, e)
	}
	return out
}

// InsertDeposit adds a deposit keyed by its eth1 deposit index.
func (p *Pool) InsertDeposit(eth1Index uint64, d *primitives.Deposit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.deposits[eth1Index]; ok {
		return ErrAlreadySeen
	}
	p.deposits[eth1Index] = d
	return nil
}

// PendingDeposits returns every pending deposit.
func (p *Pool) PendingDeposits() []*primitives.Deposit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*primitives.Deposit, 0, len(p.deposits))
	for _, d := range p.deposits {
		out = append(out, d)
	}
	return out
}

// RemoveIncluded drops every operation that appeared in a just-processed
// block body, so the pool never re-offers an already-included operation to
// the next proposer. Deposits are the exception: they are not removed.
func (p *Pool) RemoveIncluded(body *primitives.BeaconBlockBody) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, att := range body.Attestations {
		k, err := keyFor(att)
		if err != nil {
			continue
		}
		delete(p.unaggregated, k)
		delete(p.aggregated, k)
	}
	for _, s := range body.ProposerSlashings {
		delete(p.proposerSlashings, s.Header1.Header.ProposerIndex)
	}
	for _, s := range body.AttesterSlashings {
		a, b := attesterSlashingIndices(s)
		delete(p.attesterSlashings, [2]primitives.ValidatorIndex{a, b})
	}
	for _, e := range body.VoluntaryExits {
		delete(p.voluntaryExits, e.Exit.ValidatorIndex)
	}
}

func attesterSlashingIndices(s *primitives.AttesterSlashing) (primitives.ValidatorIndex, primitives.ValidatorIndex) {
	var a, b primitives.ValidatorIndex
	if len(s.Attestation1.AttestingIndices) > 0 {
		a = primitives.ValidatorIndex(s.Attestation1.AttestingIndices[0])
	}
	if len(s.Attestation2.AttestingIndices) > 0 {
		b = primitives.ValidatorIndex(s.Attestation2.AttestingIndices[0])
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}
