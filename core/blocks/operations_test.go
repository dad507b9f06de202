package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func TestProcessOperations_EmptyBodyIsNoop(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{}
	body := &primitives.BeaconBlockBody{}

	require.NoError(t, ProcessOperations(cfg, st, body, false))
}

func TestProcessOperations_RejectsTooManyAttesterSlashings(t *testing.T) {
	cfg := params.MinimalConfig()
	cfg.MaxAttesterSlashings = 1
	st := &primitives.BeaconState{}
	body := &primitives.BeaconBlockBody{
		AttesterSlashings: []*primitives.AttesterSlashing{{}, {}},
	}

	err := ProcessOperations(cfg, st, body, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max attester slashings")
}

func TestProcessOperations_RejectsTooManyVoluntaryExits(t *testing.T) {
	cfg := params.MinimalConfig()
	cfg.MaxVoluntaryExits = 1
	st := &primitives.BeaconState{}
	body := &primitives.BeaconBlockBody{
		VoluntaryExits: []*primitives.SignedVoluntaryExit{{Exit: &primitives.VoluntaryExit{}}, {Exit: &primitives.VoluntaryExit{}}},
	}

	err := ProcessOperations(cfg, st, body, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max voluntary exits")
}
