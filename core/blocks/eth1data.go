package blocks

import (
	"bytes"

	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessEth1DataInBlock appends the block's eth1 data vote, and adopts it
// as state.Eth1Data once it crosses the supermajority of the voting window.
func ProcessEth1DataInBlock(cfg *params.BeaconChainConfig, state *primitives.BeaconState, body *primitives.BeaconBlockBody) error {
	state.Eth1DataVotes = append(state.Eth1DataVotes, body.Eth1Data)

	var count int
	for _, vote := range state.Eth1DataVotes {
		if bytes.Equal(vote.DepositRoot, body.Eth1Data.DepositRoot) &&
			vote.DepositCount == body.Eth1Data.DepositCount &&
			bytes.Equal(vote.BlockHash, body.Eth1Data.BlockHash) {
			count++
		}
	}

	votingPeriodSlots := cfg.EpochsPerEth1VotingPeriod * cfg.SlotsPerEpoch
	if uint64(count)*2 > votingPeriodSlots {
		state.Eth1Data = body.Eth1Data
	}
	return nil
}
