// Package state wraps the raw primitives.BeaconState with the derived
// caches (active indices, committee shuffles, proposer indices, total
// active balance) that make repeated epoch/slot processing calls cheap.
//
// CachedBeaconState is immutable from the caller's point of view: Update
// never mutates the state in place. It builds a new primitives.BeaconState
// value (sharing unchanged slices structurally) and swaps it in under a
// single atomic pointer store, so concurrent readers never observe a torn
// update. This is the copy-on-write pattern mandated in place of the
// source's shared mutable cached state across readers.
package state

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/lightcrest/beacon-chain/cache"
	"github.com/lightcrest/beacon-chain/primitives"
)

// CachedBeaconState is a BeaconState plus its derived caches. Caches are
// lazily populated and invalidated by registry or balance mutations that
// touch effective balances.
type CachedBeaconState struct {
	ptr atomic.Value // holds *primitives.BeaconState

	activeCount *cache.ActiveCountCache
	committee   *cache.CommitteeCache
}

// New wraps raw as a CachedBeaconState with fresh, empty caches.
func New(raw *primitives.BeaconState) *CachedBeaconState {
	s := &CachedBeaconState{
		activeCount: cache.NewActiveCountCache(),
		committee:   cache.NewCommitteeCache(),
	}
	s.ptr.Store(raw)
	return s
}

// Raw returns the current underlying state snapshot. Callers must treat
// the returned value as read-only; mutate only through Update.
func (s *CachedBeaconState) Raw() *primitives.BeaconState {
	v := s.ptr.Load()
	if v == nil {
		return nil
	}
	return v.(*primitives.BeaconState)
}

// ActiveCountCache exposes the epoch-keyed active-validator-count cache.
func (s *CachedBeaconState) ActiveCountCache() *cache.ActiveCountCache { return s.activeCount }

// CommitteeCache exposes the shuffle/active-index/proposer-index cache.
func (s *CachedBeaconState) CommitteeCache() *cache.CommitteeCache { return s.committee }

// Update applies mutate to a clone of the current raw state and publishes
// the result atomically. mutate must not retain the state pointer it is
// given past its own return. Registry- or balance-affecting updates should
// also invalidate the relevant cache entries; Update does not do this
// automatically since most mutations (e.g. a single slot advance) touch
// neither.
func (s *CachedBeaconState) Update(mutate func(*primitives.BeaconState) error) error {
	cur := s.Raw()
	if cur == nil {
		return errors.New("cached state: Update called on nil state")
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	s.ptr.Store(next)
	return nil
}

// InvalidateEffectiveBalanceCaches drops cached active counts and committee
// shuffles; called whenever a registry or balance mutation could change
// which validators count as active.
func (s *CachedBeaconState) InvalidateEffectiveBalanceCaches() {
	s.activeCount = cache.NewActiveCountCache()
	s.committee = cache.NewCommitteeCache()
}
