package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func attData(sourceEpoch, targetEpoch uint64, root byte) *primitives.AttestationData {
	return &primitives.AttestationData{
		Source: &primitives.Checkpoint{Epoch: primitives.Epoch(sourceEpoch), Root: []byte{root}},
		Target: &primitives.Checkpoint{Epoch: primitives.Epoch(targetEpoch), Root: []byte{root}},
	}
}

func TestProcessAttesterSlashings_DoubleVoteSlashesOverlap(t *testing.T) {
	cfg := params.MinimalConfig()
	mixes := make([][]byte, cfg.EpochsPerHistoricalVector)
	for i := range mixes {
		mixes[i] = make([]byte, 32)
	}
	v0 := slashableProposer(cfg)
	v0.EffectiveBalance = primitives.Gwei(cfg.MaxEffectiveBalance)
	v1 := slashableProposer(cfg)
	v1.EffectiveBalance = primitives.Gwei(cfg.MaxEffectiveBalance)
	st := &primitives.BeaconState{
		Validators:  []*primitives.Validator{v0, v1},
		Balances:    []primitives.Gwei{cfg.MaxEffectiveBalance, cfg.MaxEffectiveBalance},
		Slashings:   make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
		RandaoMixes: mixes,
	}
	slashing := &primitives.AttesterSlashing{
		Attestation1: &primitives.IndexedAttestation{AttestingIndices: []uint64{0, 1}, Data: attData(1, 5, 0x01)},
		Attestation2: &primitives.IndexedAttestation{AttestingIndices: []uint64{1}, Data: attData(1, 5, 0x02)},
	}

	require.NoError(t, ProcessAttesterSlashings(cfg, st, []*primitives.AttesterSlashing{slashing}, false))
	require.False(t, v0.Slashed, "validator named only in one attestation must not be slashed")
	require.True(t, v1.Slashed, "validator named in both mutually slashable attestations must be slashed")
}

func TestProcessAttesterSlashings_RejectsNonSlashableData(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{
		Validators: []*primitives.Validator{slashableProposer(cfg)},
		Balances:   []primitives.Gwei{cfg.MaxEffectiveBalance},
		Slashings:  make([]primitives.Gwei, cfg.EpochsPerSlashingsVector),
	}
	slashing := &primitives.AttesterSlashing{
		Attestation1: &primitives.IndexedAttestation{AttestingIndices: []uint64{0}, Data: attData(1, 5, 0x01)},
		Attestation2: &primitives.IndexedAttestation{AttestingIndices: []uint64{0}, Data: attData(1, 5, 0x01)},
	}

	err := ProcessAttesterSlashings(cfg, st, []*primitives.AttesterSlashing{slashing}, false)
	require.Error(t, err)
}
