package blocks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

func vote(root string, count uint64) *primitives.Eth1Data {
	return &primitives.Eth1Data{
		DepositRoot:  []byte(root),
		DepositCount: count,
		BlockHash:    []byte("hash-" + root),
	}
}

func TestProcessEth1DataInBlock_AppendsVote(t *testing.T) {
	cfg := params.MinimalConfig()
	st := &primitives.BeaconState{Eth1Data: vote("a", 1)}
	body := &primitives.BeaconBlockBody{Eth1Data: vote("b", 2)}

	require.NoError(t, ProcessEth1DataInBlock(cfg, st, body))
	require.Len(t, st.Eth1DataVotes, 1)
	require.Equal(t, vote("a", 1), st.Eth1Data, "a single vote never reaches supermajority")
}

func TestProcessEth1DataInBlock_AdoptsOnSupermajority(t *testing.T) {
	cfg := params.MinimalConfig()
	votingPeriodSlots := cfg.EpochsPerEth1VotingPeriod * cfg.SlotsPerEpoch

	st := &primitives.BeaconState{Eth1Data: vote("a", 1)}
	candidate := vote("b", 2)
	for i := uint64(0); i*2 <= votingPeriodSlots; i++ {
		require.NoError(t, ProcessEth1DataInBlock(cfg, st, &primitives.BeaconBlockBody{Eth1Data: candidate}))
	}
	require.Equal(t, candidate, st.Eth1Data, "once a vote crosses the supermajority threshold it becomes canonical")
}
