package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func slashableProposer(cfg *params.BeaconChainConfig) *primitives.Validator {
	return &primitives.Validator{
		ActivationEpoch:   0,
		ExitEpoch:         primitives.Epoch(cfg.FarFutureEpoch),
		WithdrawableEpoch: primitives.Epoch(cfg.FarFutureEpoch),
	}
}

func header(slot, proposer uint64, parent byte) *primitives.SignedBeaconBlockHeader {
	return &primitives.SignedBeaconBlockHeader{
		Header: &primitives.BeaconBlockHeader{
			Slot:          primitives.Slot(slot),
			ProposerIndex: primitives.ValidatorIndex(proposer),
			ParentRoot:    []byte{parent, 0, 0},
			StateRoot:     make([]byte, 32),
			BodyRoot:      make([]byte, 32),
		},
		Signature: make([]byte, 96),
	}
}

func TestProcessProposerSlashings_SlashesOnDistinctHeadersSameSlot(t *testing.T) {
	cfg := params.MinimalConfig()
	v := slashableProposer(cfg)
	mixes := make([][]byte, cfg.EpochsPerHistoricalVector)
	for i := range mixes {
		mixes[i] = make([]byte, 32)
	}
	st := &primitives.BeaconState{
		Slot:        primitives.Slot(5 * cfg.SlotsPerEpoch),
		Validators:  []*primitives.Validator{v},
		Balances:    []primitives.Gwei{cfg.MaxEffectiveBalance},
		Slashings:   make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
		RandaoMixes: mixes,
	}
	v.EffectiveBalance = primitives.Gwei(cfg.MaxEffectiveBalance)
	slashing := &primitives.ProposerSlashing{
		Header1: header(40, 0, 1),
		Header2: header(40, 0, 2),
	}

	require.NoError(t, ProcessProposerSlashings(cfg, st, []*primitives.ProposerSlashing{slashing}, false))
	require.True(t, v.Slashed)
}

func TestProcessProposerSlashings_RejectsMismatchedSlots(t *testing.T) {
	cfg := params.MinimalConfig()
	v := slashableProposer(cfg)
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{v},
		Balances:   []primitives.Gwei{cfg.MaxEffectiveBalance},
		Slashings:  make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
	}
	slashing := &primitives.ProposerSlashing{
		Header1: header(40, 0, 1),
		Header2: header(41, 0, 2),
	}

	err := ProcessProposerSlashings(cfg, st, []*primitives.ProposerSlashing{slashing}, false)
	require.Error(t, err)
}

func TestProcessProposerSlashings_RejectsIdenticalHeaders(t *testing.T) {
	cfg := params.MinimalConfig()
	v := slashableProposer(cfg)
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{v},
		Balances:   []primitives.Gwei{cfg.MaxEffectiveBalance},
		Slashings:  make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
	}
	slashing := &primitives.ProposerSlashing{
		Header1: header(40, 0, 1),
		Header2: header(40, 0, 1),
	}

	err := ProcessProposerSlashings(cfg, st, []*primitives.ProposerSlashing{slashing}, false)
	require.Error(t, err)
}
