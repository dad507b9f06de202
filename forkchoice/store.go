// Package forkchoice implements the weighted-DAG LMD-GHOST store with the
// FFG justification/finalization filter that picks the canonical head from
// the set of processable blocks (spec.md §4.2).
//
// The teacher's own retrieval pack dropped its protoarray fork-choice
// files; this package is grounded on the two surviving standalone
// protoarray-era files (Store/OnBlock/Head/ancestor/latestAttestingBalance)
// but re-expressed per spec.md §9's DESIGN NOTES: a root-indexed flat table
// (map[[32]byte]*Node) replaces the reference's recursive parent-pointer DB
// walk, eliminating cycles and giving O(descendant count) pruning instead
// of O(tree).
package forkchoice

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

var log = logrus.WithField("prefix", "forkchoice")

// ErrUnknownParent is returned by OnBlock when the block's parent root has
// no corresponding node in the store.
var ErrUnknownParent = errors.New("forkchoice: parent block not found in store")

// ErrNotDescendant is returned when a block is not a descendant of the
// store's finalized checkpoint.
var ErrNotDescendant = errors.New("forkchoice: block is not a descendant of the finalized checkpoint")

// ErrFinalizedSlot is returned when a block's slot is at or before the
// finalized checkpoint's slot.
var ErrFinalizedSlot = errors.New("forkchoice: block slot is at or before the finalized checkpoint")

// statusFlag is a bitset of per-node validity markers.
type statusFlag uint8

const (
	statusValid statusFlag = 1 << iota
	statusOptimistic
	statusInvalidParent
)

// Node is a per-block entry in the store: a flat-table replacement for the
// source's cyclic parent/child block-tree pointers (spec.md §9).
type Node struct {
	Root             [32]byte
	ParentRoot       [32]byte
	Slot             uint64
	TargetEpoch      uint64
	JustifiedCheckpoint primitives.Checkpoint
	FinalizedCheckpoint primitives.Checkpoint
	Weight           uint64
	BestDescendant   [32]byte
	HasBestDescendant bool
	Status           statusFlag
}

func (n *Node) isValid() bool      { return n.Status&statusValid != 0 }
func (n *Node) isOptimistic() bool { return n.Status&statusOptimistic != 0 }
func (n *Node) invalidParent() bool { return n.Status&statusInvalidParent != 0 }

// vote is the latest message cast by one validator: the block root it
// attests to and the target epoch of that attestation.
type vote struct {
	root  [32]byte
	epoch uint64
}

// Store is the fork-choice store: current time, justified/finalized
// checkpoints (realized and unrealized), the flat node table, and
// per-validator latest messages, per spec.md §3's ForkChoiceStore shape.
type Store struct {
	cfg *params.BeaconChainConfig

	mu sync.RWMutex

	time uint64 // current slot

	justified         primitives.Checkpoint
	finalized         primitives.Checkpoint
	unrealizedJustified primitives.Checkpoint
	unrealizedFinalized primitives.Checkpoint

	nodes map[[32]byte]*Node

	latestMessage map[primitives.ValidatorIndex]vote
	equivocating  map[primitives.ValidatorIndex]bool

	// effectiveBalance supplies the weight contributed by each validator's
	// latest message; the orchestrator refreshes this from the justified
	// state at the first slot of each epoch.
	effectiveBalance map[primitives.ValidatorIndex]uint64
}

// NewGenesisStore returns a store rooted at genesisRoot with both
// checkpoints set to the genesis epoch, mirroring the teacher's
// GenesisStore (other_examples protoarray service.go).
func NewGenesisStore(cfg *params.BeaconChainConfig, genesisRoot [32]byte) *Store {
	cp := primitives.Checkpoint{Epoch: 0, Root: genesisRoot[:]}
	s := &Store{
		cfg:                cfg,
		justified:          cp,
		finalized:          cp,
		unrealizedJustified: cp,
		unrealizedFinalized: cp,
		nodes:              make(map[[32]byte]*Node),
		latestMessage:      make(map[primitives.ValidatorIndex]vote),
		equivocating:       make(map[primitives.ValidatorIndex]bool),
		effectiveBalance:   make(map[primitives.ValidatorIndex]uint64),
	}
	s.nodes[genesisRoot] = &Node{
		Root:   genesisRoot,
		Slot:   0,
		Status: statusValid,
	}
	return s
}

// JustifiedCheckpoint returns the store's current justified checkpoint.
func (s *Store) JustifiedCheckpoint() primitives.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.justified
}

// FinalizedCheckpoint returns the store's current finalized checkpoint.
func (s *Store) FinalizedCheckpoint() primitives.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized
}

// Node returns the store's node for root, if any.
func (s *Store) Node(root [32]byte) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[root]
	return n, ok
}

// SetEffectiveBalance records the weight a validator's vote carries,
// refreshed by the orchestrator from the justified state's effective
// balances at the first slot of each epoch.
func (s *Store) SetEffectiveBalance(idx primitives.ValidatorIndex, balance uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectiveBalance[idx] = balance
}

// OnBlock inserts a newly accepted block into the store. parentRoot must
// already have a node; blk.Slot must exceed the finalized checkpoint's
// slot and blk must descend from the finalized block. justified/finalized
// are the checkpoints the block's post-state carries, used to update the
// store's realized checkpoints and to run the FFG filter during head
// selection.
func (s *Store) OnBlock(root, parentRoot [32]byte, slot uint64, justified, finalized primitives.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentRoot]
	if !ok {
		return ErrUnknownParent
	}
	if parent.invalidParent() || !parent.isValid() && !parent.isOptimistic() {
		return errors.New("forkchoice: parent block marked invalid")
	}

	finalizedSlot := startSlot(s.cfg, s.finalized.Epoch)
	if slot <= finalizedSlot {
		return ErrFinalizedSlot
	}
	if !s.isDescendantLocked(parentRoot, s.finalized.Root32()) {
		return ErrNotDescendant
	}

	s.nodes[root] = &Node{
		Root:                root,
		ParentRoot:          parentRoot,
		Slot:                slot,
		TargetEpoch:         slotToEpoch(s.cfg, slot),
		JustifiedCheckpoint: justified,
		FinalizedCheckpoint: finalized,
		Status:              statusValid,
	}

	if justified.Epoch > s.justified.Epoch {
		s.justified = justified
	}
	if finalized.Epoch > s.finalized.Epoch {
		s.finalized = finalized
		s.pruneLocked(finalized.Root32())
	}
	return nil
}

// MarkOptimistic flags root as optimistic: accepted pending execution-engine
// confirmation (spec.md §7 ExecutionUnavailable).
func (s *Store) MarkOptimistic(root [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[root]; ok {
		n.Status |= statusOptimistic
	}
}

// MarkInvalid flags root and every descendant of root as invalid, per
// spec.md §7 ExecutionInvalid. Only descendants are marked: siblings that
// merely share an ancestor with root are left untouched and re-validated
// independently, per the Open Question resolution in spec.md §9.
func (s *Store) MarkInvalid(root [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markInvalidLocked(root)
}

func (s *Store) markInvalidLocked(root [32]byte) {
	n, ok := s.nodes[root]
	if !ok {
		return
	}
	n.Status = statusInvalidParent
	for r, child := range s.nodes {
		if child.ParentRoot == root {
			s.markInvalidLocked(r)
		}
	}
}

// IsBadBlock reports whether root has been marked invalid.
func (s *Store) IsBadBlock(root [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[root]
	return ok && n.invalidParent()
}

// isDescendantLocked reports whether candidate is ancestorRoot or a
// descendant of it, walking parent pointers through the flat table. The
// walk bounds itself on the table size rather than trusting slot-zero as a
// root marker, since the store's root node (genesis, or the most recently
// finalized block after pruning) has no parent entry of its own.
func (s *Store) isDescendantLocked(candidate, ancestorRoot [32]byte) bool {
	cur := candidate
	for i := 0; i <= len(s.nodes); i++ {
		if cur == ancestorRoot {
			return true
		}
		n, ok := s.nodes[cur]
		if !ok {
			return false
		}
		if cur == n.ParentRoot {
			return false
		}
		cur = n.ParentRoot
	}
	return false
}

// pruneLocked re-roots the tree at newRoot: every node that is not newRoot
// or a descendant of it is discarded, per spec.md §4.2 pruning.
func (s *Store) pruneLocked(newRoot [32]byte) {
	keep := make(map[[32]byte]bool)
	keep[newRoot] = true
	changed := true
	for changed {
		changed = false
		for r, n := range s.nodes {
			if keep[r] {
				continue
			}
			if keep[n.ParentRoot] {
				keep[r] = true
				changed = true
			}
		}
	}
	for r := range s.nodes {
		if !keep[r] {
			delete(s.nodes, r)
		}
	}
	// latestMessage entries pointing at pruned roots are left in place:
	// ancestorLocked returns !ok for a root no longer in the table, so a
	// stale vote simply stops contributing weight rather than needing an
	// explicit sweep.
}

// OnAttestation records validator's latest message if attestation's target
// epoch is newer than what the store already has for it. A validator that
// casts two distinct votes for the same target epoch is added to the
// equivocating set: its weight is subtracted from all subtrees and never
// re-added, per spec.md §4.2.
func (s *Store) OnAttestation(validator primitives.ValidatorIndex, targetEpoch uint64, root [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.equivocating[validator] {
		return
	}
	existing, ok := s.latestMessage[validator]
	if ok && existing.epoch == targetEpoch && existing.root != root {
		s.equivocating[validator] = true
		delete(s.latestMessage, validator)
		return
	}
	if !ok || targetEpoch >= existing.epoch {
		s.latestMessage[validator] = vote{root: root, epoch: targetEpoch}
	}
}

// OnTick advances the store's internal time. At the first tick of a new
// epoch it pulls unrealized justification/finalization before any
// subsequent head recomputation, per the Open Question resolution in
// spec.md §9.
func (s *Store) OnTick(slot uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasNewEpoch := s.cfg.SlotsPerEpoch > 0 && slot%s.cfg.SlotsPerEpoch == 0 && slot > s.time
	s.time = slot
	if wasNewEpoch {
		if s.unrealizedJustified.Epoch > s.justified.Epoch {
			s.justified = s.unrealizedJustified
		}
		if s.unrealizedFinalized.Epoch > s.finalized.Epoch {
			s.finalized = s.unrealizedFinalized
			s.pruneLocked(s.finalized.Root32())
		}
	}
}

// SetUnrealizedCheckpoints records checkpoints computed by epoch processing
// that have not yet been pulled into the realized justified/finalized
// fields; OnTick promotes them at the next epoch boundary.
func (s *Store) SetUnrealizedCheckpoints(justified, finalized primitives.Checkpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if justified.Epoch > s.unrealizedJustified.Epoch {
		s.unrealizedJustified = justified
	}
	if finalized.Epoch > s.unrealizedFinalized.Epoch {
		s.unrealizedFinalized = finalized
	}
}

// Head runs LMD-GHOST starting from the justified checkpoint's block,
// descending to the heaviest child at each step with lexicographic tie
// breaks, filtered by FFG: only children whose carried justified checkpoint
// does not downgrade the store's justified checkpoint are eligible.
func (s *Store) Head() ([32]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	head := s.justified.Root32()
	if _, ok := s.nodes[head]; !ok {
		return [32]byte{}, errors.New("forkchoice: justified root not found in store")
	}

	for {
		children := s.childrenLocked(head)
		if len(children) == 0 {
			return head, nil
		}
		best := children[0]
		bestWeight := s.weightLocked(best)
		for _, c := range children[1:] {
			w := s.weightLocked(c)
			if w > bestWeight || (w == bestWeight && bytes.Compare(c[:], best[:]) > 0) {
				best = c
				bestWeight = w
			}
		}
		head = best
	}
}

// childrenLocked returns every node whose parent is root and which passes
// the FFG filter (its carried justified checkpoint does not downgrade the
// store's current justified checkpoint).
func (s *Store) childrenLocked(root [32]byte) [][32]byte {
	var out [][32]byte
	for r, n := range s.nodes {
		if n.ParentRoot != root {
			continue
		}
		if !n.isValid() && !n.isOptimistic() {
			continue
		}
		if n.JustifiedCheckpoint.Epoch < s.justified.Epoch {
			continue
		}
		out = append(out, r)
	}
	return out
}

// weightLocked sums the effective balance of every validator whose latest
// message's ancestor at root's slot is root itself.
func (s *Store) weightLocked(root [32]byte) uint64 {
	target, ok := s.nodes[root]
	if !ok {
		return 0
	}
	var total uint64
	for idx, v := range s.latestMessage {
		if s.equivocating[idx] {
			continue
		}
		anc, ok := s.ancestorLocked(v.root, target.Slot)
		if !ok || anc != root {
			continue
		}
		total += s.effectiveBalance[idx]
	}
	return total
}

// ancestorLocked returns the ancestor of root at slot, or false if root's
// own slot is already below slot (no such ancestor recorded).
func (s *Store) ancestorLocked(root [32]byte, slot uint64) ([32]byte, bool) {
	cur := root
	for {
		n, ok := s.nodes[cur]
		if !ok {
			return [32]byte{}, false
		}
		if n.Slot == slot {
			return cur, true
		}
		if n.Slot < slot {
			return [32]byte{}, false
		}
		if n.ParentRoot == cur {
			return [32]byte{}, false
		}
		cur = n.ParentRoot
	}
}

func startSlot(cfg *params.BeaconChainConfig, epoch uint64) uint64 {
	return epoch * cfg.SlotsPerEpoch
}

func slotToEpoch(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	if cfg.SlotsPerEpoch == 0 {
		return 0
	}
	return slot / cfg.SlotsPerEpoch
}
