package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

const maxCachedCommitteeShufflings = 4

// CommitteeCache caches the full shuffled-index ordering and active-index
// set for an epoch, keyed by the epoch's seed so a reorg that changes the
// seed cannot serve a stale shuffle.
type CommitteeCache struct {
	lock      sync.RWMutex
	shuffled  *lru.Cache
	active    *lru.Cache
	proposers *lru.Cache
}

// NewCommitteeCache constructs an empty cache.
func NewCommitteeCache() *CommitteeCache {
	shuffled, _ := lru.New(maxCachedCommitteeShufflings)
	active, _ := lru.New(maxCachedCommitteeShufflings)
	proposers, _ := lru.New(maxCachedCommitteeShufflings)
	return &CommitteeCache{shuffled: shuffled, active: active, proposers: proposers}
}

// ShuffledIndices returns the cached shuffled index ordering for seed, if any.
func (c *CommitteeCache) ShuffledIndices(seed [32]byte) ([]uint64, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.shuffled.Get(seed)
	if !ok {
		return nil, false
	}
	return v.([]uint64), true
}

// AddShuffledIndices stores a freshly computed shuffle for seed.
func (c *CommitteeCache) AddShuffledIndices(seed [32]byte, indices []uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.shuffled.Add(seed, indices)
}

// ActiveIndices returns the cached active validator index set for epoch, if any.
func (c *CommitteeCache) ActiveIndices(epoch uint64) ([]uint64, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.active.Get(epoch)
	if !ok {
		return nil, nil
	}
	return v.([]uint64), nil
}

// AddActiveIndices stores the active validator index set for epoch.
func (c *CommitteeCache) AddActiveIndices(epoch uint64, indices []uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.active.Add(epoch, indices)
}

// ProposerIndices returns the cached per-slot proposer index list for epoch.
func (c *CommitteeCache) ProposerIndices(epoch uint64) ([]uint64, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.proposers.Get(epoch)
	if !ok {
		return nil, false
	}
	return v.([]uint64), true
}

// AddProposerIndices stores the per-slot proposer index list for epoch.
func (c *CommitteeCache) AddProposerIndices(epoch uint64, indices []uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.proposers.Add(epoch, indices)
}
