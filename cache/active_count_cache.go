// Package cache provides the epoch-keyed derived-value caches that sit in
// front of the O(n) scans core/helpers would otherwise repeat every call:
// active validator counts, committee shuffles, and proposer indices. Each
// cache is owned by exactly one CachedBeaconState and guards its entries
// with its own lock.
package cache

import (
	"sync"

	"github.com/pkg/errors"
	lru "github.com/hashicorp/golang-lru"
)

// ErrNotFound is returned by cache lookups that miss.
var ErrNotFound = errors.New("cache: value not found")

const maxCachedEpochs = 4

// ActiveCountByEpoch pairs an epoch with the active validator count computed
// for it.
type ActiveCountByEpoch struct {
	Epoch       uint64
	ActiveCount uint64
}

// ActiveCountCache caches ActiveValidatorCount results per epoch.
type ActiveCountCache struct {
	lock  sync.RWMutex
	cache *lru.Cache
}

// NewActiveCountCache constructs an empty cache.
func NewActiveCountCache() *ActiveCountCache {
	c, err := lru.New(maxCachedEpochs)
	if err != nil {
		panic(err) // only fails for a non-positive size, which is a bug, not a runtime condition
	}
	return &ActiveCountCache{cache: c}
}

// ActiveCountInEpoch returns the cached count for epoch, or ErrNotFound.
func (c *ActiveCountCache) ActiveCountInEpoch(epoch uint64) (uint64, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.cache.Get(epoch)
	if !ok {
		return 0, ErrNotFound
	}
	return v.(uint64), nil
}

// AddActiveCount stores a freshly computed count.
func (c *ActiveCountCache) AddActiveCount(entry *ActiveCountByEpoch) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache.Add(entry.Epoch, entry.ActiveCount)
	return nil
}
