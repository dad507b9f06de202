// Package transition implements the full state transition function, which
// consists of the per-slot transition, the per-epoch transition, and the
// per-block transition, plus the top-level driver that ties them together
// for a single incoming signed block.
package transition

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/lightcrest/beacon-chain/core/blocks"
	"github.com/lightcrest/beacon-chain/core/epoch"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

var log = logrus.WithField("prefix", "core/transition")

// Config toggles the expensive verification steps a transition performs.
// Signature and state-root verification are skipped when replaying trusted
// history, and enabled for anything arriving over the network.
type Config struct {
	VerifySignatures bool
	VerifyStateRoot  bool
	GenesisTime      uint64
}

// DefaultConfig verifies nothing; callers processing untrusted blocks must
// opt in explicitly.
func DefaultConfig() *Config {
	return &Config{}
}

// ErrStateRootMismatch is returned when a block's declared post-state root
// does not match the root actually produced by applying it.
var ErrStateRootMismatch = errors.New("state root mismatch after processing block")

// ExecuteStateTransition advances state through any skipped slots up to
// signed.Block.Slot, applies the block itself, and optionally checks the
// resulting state root against the one the block declares.
func ExecuteStateTransition(ctx context.Context, cfg *params.BeaconChainConfig, state *primitives.BeaconState, signed *primitives.SignedBeaconBlock, tcfg *Config) error {
	if signed == nil || signed.Block == nil {
		return errors.New("nil signed block")
	}
	ctx, span := trace.StartSpan(ctx, "transition.ExecuteStateTransition")
	defer span.End()

	if err := ProcessSlots(ctx, cfg, state, uint64(signed.Block.Slot)); err != nil {
		return errors.Wrap(err, "could not process slots")
	}
	if err := ProcessBlock(ctx, cfg, state, signed.Block, tcfg); err != nil {
		return errors.Wrap(err, "could not process block")
	}

	if tcfg.VerifyStateRoot {
		root, err := hashTreeRoot(state)
		if err != nil {
			return errors.Wrap(err, "could not compute post-state root")
		}
		if !bytes.Equal(root[:], signed.Block.StateRoot) {
			return ErrStateRootMismatch
		}
	}
	return nil
}

// ProcessSlot caches the pre-state root into state_roots and block_roots and
// fills in latest_block_header's state root the first time it's needed; it
// runs once per slot regardless of whether that slot has a block.
func ProcessSlot(ctx context.Context, cfg *params.BeaconChainConfig, state *primitives.BeaconState) error {
	_, span := trace.StartSpan(ctx, "transition.ProcessSlot")
	defer span.End()

	prevStateRoot, err := hashTreeRoot(state)
	if err != nil {
		return errors.Wrap(err, "could not tree hash prev state")
	}
	idx := uint64(state.Slot) % cfg.SlotsPerHistoricalRoot
	state.StateRoots[idx] = prevStateRoot[:]

	var zeroRoot [32]byte
	if bytes.Equal(state.LatestBlockHeader.StateRoot, zeroRoot[:]) {
		state.LatestBlockHeader.StateRoot = prevStateRoot[:]
	}
	prevBlockRoot, err := sszSigningRootHeader(state.LatestBlockHeader)
	if err != nil {
		return errors.Wrap(err, "could not determine prev block root")
	}
	state.BlockRoots[idx] = prevBlockRoot[:]
	return nil
}

// ProcessSlots drives state.Slot forward to slot, running ProcessSlot once
// per slot and dispatching to the epoch transition on every epoch boundary.
func ProcessSlots(ctx context.Context, cfg *params.BeaconChainConfig, state *primitives.BeaconState, slot uint64) error {
	if uint64(state.Slot) > slot {
		return errors.Errorf("state slot %d is ahead of requested slot %d", state.Slot, slot)
	}
	for uint64(state.Slot) < slot {
		if err := ProcessSlot(ctx, cfg, state); err != nil {
			return err
		}
		if canProcessEpoch(cfg, state) {
			if err := epoch.ProcessEpoch(ctx, cfg, state); err != nil {
				return errors.Wrap(err, "could not process epoch")
			}
		}
		state.Slot++
	}
	return nil
}

func canProcessEpoch(cfg *params.BeaconChainConfig, state *primitives.BeaconState) bool {
	return (uint64(state.Slot)+1)%cfg.SlotsPerEpoch == 0
}

// ProcessBlock applies the header, randao, eth1 vote, operations, and
// execution payload checks that make up a single block's contribution to
// state, in protocol order.
func ProcessBlock(ctx context.Context, cfg *params.BeaconChainConfig, state *primitives.BeaconState, block *primitives.BeaconBlock, tcfg *Config) error {
	_, span := trace.StartSpan(ctx, "transition.ProcessBlock")
	defer span.End()

	if err := blocks.ProcessBlockHeader(cfg, state, block); err != nil {
		return errors.Wrap(err, "could not process block header")
	}
	if err := blocks.ProcessRandao(cfg, state, block.Body, tcfg.VerifySignatures); err != nil {
		return errors.Wrap(err, "could not process randao")
	}
	if err := blocks.ProcessEth1DataInBlock(cfg, state, block.Body); err != nil {
		return errors.Wrap(err, "could not process eth1 data")
	}
	if err := blocks.ProcessOperations(cfg, state, block.Body, tcfg.VerifySignatures); err != nil {
		return errors.Wrap(err, "could not process block operations")
	}
	if block.Body.ExecutionPayload != nil {
		if err := blocks.ProcessExecutionPayload(cfg, state, tcfg.GenesisTime, block.Body.ExecutionPayload); err != nil {
			return errors.Wrap(err, "could not process execution payload")
		}
	}

	log.WithFields(logrus.Fields{
		"slot":         block.Slot,
		"attestations": len(block.Body.Attestations),
		"deposits":     len(block.Body.Deposits),
	}).Debug("Processed block")
	return nil
}

func hashTreeRoot(state *primitives.BeaconState) ([32]byte, error) {
	return blocks.StateHashTreeRoot(state)
}

func sszSigningRootHeader(h *primitives.BeaconBlockHeader) ([32]byte, error) {
	return blocks.HeaderSigningRoot(h)
}
