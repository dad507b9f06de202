// Package blockchain implements the chain orchestrator (spec.md §4.3): the
// single-writer event loop that validates incoming blocks and attestations,
// invokes the state-transition engine, persists results, reruns fork
// choice, and emits head/justified/finalized notifications. Grounded on the
// teacher's beacon-chain/blockchain package (process_block.go's onBlock/
// onBlockBatch, receive_block.go's ReceiveBlock/cleanupBlockOperations/
// isCompetingBlock, chain_info.go's read-path capability interfaces),
// re-expressed per spec.md §9 DESIGN NOTES as an explicit observer registry
// and four-phase InFlight pipeline rather than an event-emitter base class
// and promise-chained mutation.
package blockchain

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lightcrest/beacon-chain/core/transition"
	"github.com/lightcrest/beacon-chain/db/kv"
	"github.com/lightcrest/beacon-chain/execution"
	"github.com/lightcrest/beacon-chain/forkchoice"
	"github.com/lightcrest/beacon-chain/operations"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

var log = logrus.WithField("prefix", "blockchain")

// defaultCachedStateCapacity is the LRU's non-pinned capacity. Not
// prescribed by spec.md (an explicitly noted Open Question); chosen
// empirically. Only the current head state is pinned outside the LRU's own
// eviction accounting; justified and finalized states are not pinned, can
// be evicted like any other state, and are then reloaded from the
// persistent store.
const defaultCachedStateCapacity = 128

// Service is the chain orchestrator. It owns exclusive mutation of the
// cached head state, the fork-choice store, and the operation pools
// (spec.md §5's single-writer, many-reader model); readers take snapshots
// via the ChainInfoFetcher methods without blocking the writer for more
// than a lock acquisition.
type Service struct {
	cfg *params.BeaconChainConfig
	db  *kv.Store
	fc  *forkchoice.Store
	pool *operations.Pool
	engine execution.Engine

	mu sync.Mutex // serializes ReceiveBlock/ReceiveAttestation/OnSlot

	headRoot  [32]byte
	headState *primitives.BeaconState

	stateCache *lru.Cache // state-root -> *primitives.BeaconState, excluding pinned states
	pinned     map[[32]byte]*primitives.BeaconState

	badBlocks map[[32]byte]bool

	observers registry

	genesisTime uint64
}

// Config bundles the Service's collaborators, mirroring the teacher's
// convention of a functional-options Config struct for service construction.
type Config struct {
	BeaconConfig    *params.BeaconChainConfig
	Database        *kv.Store
	ForkChoiceStore *forkchoice.Store
	OperationPool   *operations.Pool
	ExecutionEngine execution.Engine
	GenesisTime     uint64
}

// NewService constructs the orchestrator around genesisState and
// genesisRoot, pinning the genesis state as the initial head, justified,
// and finalized state.
func NewService(cfg *Config, genesisRoot [32]byte, genesisState *primitives.BeaconState) (*Service, error) {
	cache, err := lru.New(defaultCachedStateCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize cached-state LRU")
	}
	s := &Service{
		cfg:         cfg.BeaconConfig,
		db:          cfg.Database,
		fc:          cfg.ForkChoiceStore,
		pool:        cfg.OperationPool,
		engine:      cfg.ExecutionEngine,
		headRoot:    genesisRoot,
		headState:   genesisState,
		stateCache:  cache,
		pinned:      make(map[[32]byte]*primitives.BeaconState),
		badBlocks:   make(map[[32]byte]bool),
		genesisTime: cfg.GenesisTime,
	}
	s.pinned[genesisRoot] = genesisState
	return s, nil
}

// Subscribe registers o to receive synchronous event callbacks.
func (s *Service) Subscribe(o Observer) {
	s.observers.Subscribe(o)
}

// stateByRoot returns the cached state for root, trying the pinned set
// first, then the LRU, then the persistent store (spec.md §3 "older states
// are reconstructible by replay from the nearest snapshot" — here satisfied
// by a direct DB read since every accepted block's post-state is persisted
// atomically alongside it; a deeper replay-from-snapshot path is only
// needed once a state has been pruned from the DB, which this module does
// not yet do for non-finalized ancestors).
func (s *Service) stateByRoot(root [32]byte) (*primitives.BeaconState, error) {
	if st, ok := s.pinned[root]; ok {
		return st, nil
	}
	if v, ok := s.stateCache.Get(root); ok {
		return v.(*primitives.BeaconState), nil
	}
	st, err := s.db.State(root)
	if err != nil {
		return nil, errors.Wrap(err, "could not load state from store")
	}
	if st != nil {
		s.stateCache.Add(root, st)
	}
	return st, nil
}

// pin moves root's state into the pinned set, used whenever it becomes the
// head state; unpin moves the previous head's state back into the LRU when
// the head changes.
func (s *Service) pin(root [32]byte, st *primitives.BeaconState) {
	s.pinned[root] = st
}

func (s *Service) unpin(root [32]byte) {
	if st, ok := s.pinned[root]; ok {
		delete(s.pinned, root)
		s.stateCache.Add(root, st)
	}
}

// transitionConfig returns the Config the state-transition engine should
// run with for freshly received, untrusted network objects: both signature
// and state-root verification enabled.
func (s *Service) transitionConfig() *transition.Config {
	return &transition.Config{
		VerifySignatures: true,
		VerifyStateRoot:  true,
		GenesisTime:      s.genesisTime,
	}
}
