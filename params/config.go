// Package params holds the network descriptor: the immutable set of
// numeric constants a beacon chain instance is configured with. Unlike the
// teacher's shared/params package, this descriptor is never stored in a
// mutable package-level singleton — every core entry point takes a
// *BeaconChainConfig explicitly, per the no-global-configuration design note.
package params

import "time"

// BeaconChainConfig collects every network constant the state-transition
// engine, fork-choice store, and orchestrator read. Field names mirror the
// canonical beacon-chain spec constants.
type BeaconChainConfig struct {
	// Time parameters.
	SecondsPerSlot    uint64
	SlotsPerEpoch     uint64
	MinSeedLookahead  uint64
	MaxSeedLookhead   uint64
	MinEpochsToInactivityPenalty uint64
	EpochsPerSyncCommitteePeriod uint64
	EpochsPerEth1VotingPeriod    uint64

	// State list lengths.
	SlotsPerHistoricalRoot  uint64
	EpochsPerHistoricalVector uint64
	EpochsPerSlashingsVector  uint64
	HistoricalRootsLimit      uint64
	ValidatorRegistryLimit    uint64
	SyncCommitteeSize         uint64

	// Gwei values.
	MinDepositAmount          uint64
	MaxEffectiveBalance       uint64
	EffectiveBalanceIncrement uint64
	EjectionBalance           uint64

	// Reward and penalty quotients.
	BaseRewardFactor            uint64
	BaseRewardsPerEpoch         uint64
	WhistleblowerRewardQuotient uint64
	ProposerWeight              uint64
	WeightDenominator           uint64
	InactivityPenaltyQuotient   uint64
	MinSlashingPenaltyQuotient  uint64
	ProportionalSlashingMultiplier uint64
	InactivityScoreBias          uint64
	InactivityScoreRecoveryRate  uint64

	// Participation flag indices / weights, Altair style.
	TimelySourceWeight uint64
	TimelyTargetWeight uint64
	TimelyHeadWeight   uint64
	SyncRewardWeight   uint64

	// Max operations per block.
	MaxProposerSlashings uint64
	MaxAttesterSlashings uint64
	MaxAttestations      uint64
	MaxDeposits          uint64
	MaxVoluntaryExits    uint64

	// Validator cycle.
	ChurnLimitQuotient    uint64
	MinPerEpochChurnLimit uint64
	MinValidatorWithdrawabilityDelay uint64

	// Fork choice.
	ProposerScoreBoost uint64 // percentage, applied to the proposer's block weight

	// Domains (4-byte domain type prefixes).
	DomainBeaconProposer    []byte
	DomainBeaconAttester    []byte
	DomainRandao            []byte
	DomainDeposit           []byte
	DomainVoluntaryExit     []byte
	DomainSyncCommittee     []byte

	// Genesis.
	GenesisEpoch Epoch
	GenesisSlot  Slot
	FarFutureEpoch Epoch

	GenesisDelay uint64

	SlotDuration func() time.Duration
}

// Epoch and Slot are local aliases kept distinct from primitives' so this
// package has no import-cycle dependency on primitives; BeaconChainConfig
// fields convert at call sites.
type Epoch = uint64
type Slot = uint64

// MainnetConfig returns the production preset.
func MainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		SecondsPerSlot:                 12,
		SlotsPerEpoch:                  32,
		MinSeedLookahead:               1,
		MaxSeedLookhead:                4,
		MinEpochsToInactivityPenalty:   4,
		EpochsPerSyncCommitteePeriod:   256,
		EpochsPerEth1VotingPeriod:      64,
		SlotsPerHistoricalRoot:         8192,
		EpochsPerHistoricalVector:      65536,
		EpochsPerSlashingsVector:       8192,
		HistoricalRootsLimit:           16777216,
		ValidatorRegistryLimit:         1099511627776,
		SyncCommitteeSize:              512,
		MinDepositAmount:               1000000000,
		MaxEffectiveBalance:            32000000000,
		EffectiveBalanceIncrement:      1000000000,
		EjectionBalance:                16000000000,
		BaseRewardFactor:               64,
		BaseRewardsPerEpoch:            4,
		WhistleblowerRewardQuotient:    512,
		ProposerWeight:                 8,
		WeightDenominator:              64,
		InactivityPenaltyQuotient:      67108864,
		MinSlashingPenaltyQuotient:     64,
		ProportionalSlashingMultiplier: 2,
		InactivityScoreBias:            4,
		InactivityScoreRecoveryRate:    16,
		TimelySourceWeight:             14,
		TimelyTargetWeight:             26,
		TimelyHeadWeight:               14,
		SyncRewardWeight:               2,
		MaxProposerSlashings:           16,
		MaxAttesterSlashings:           2,
		MaxAttestations:                128,
		MaxDeposits:                    16,
		MaxVoluntaryExits:              16,
		ChurnLimitQuotient:             65536,
		MinPerEpochChurnLimit:          4,
		MinValidatorWithdrawabilityDelay: 256,
		ProposerScoreBoost:             40,
		DomainBeaconProposer:           []byte{0x00, 0x00, 0x00, 0x00},
		DomainBeaconAttester:           []byte{0x01, 0x00, 0x00, 0x00},
		DomainRandao:                   []byte{0x02, 0x00, 0x00, 0x00},
		DomainDeposit:                  []byte{0x03, 0x00, 0x00, 0x00},
		DomainVoluntaryExit:            []byte{0x04, 0x00, 0x00, 0x00},
		DomainSyncCommittee:            []byte{0x07, 0x00, 0x00, 0x00},
		GenesisEpoch:                   0,
		GenesisSlot:                    0,
		FarFutureEpoch:                 ^uint64(0),
		GenesisDelay:                   604800,
		SlotDuration:                   func() time.Duration { return 12 * time.Second },
	}
}

// MinimalConfig returns the small-scale preset used by tests and local
// interop networks: shorter epochs and smaller vector sizes so fixtures
// stay cheap to construct, matching the teacher's convention of a
// MinimalSpecConfig alongside MainnetConfig.
func MinimalConfig() *BeaconChainConfig {
	c := MainnetConfig()
	c.SlotsPerEpoch = 8
	c.SlotsPerHistoricalRoot = 64
	c.EpochsPerHistoricalVector = 64
	c.EpochsPerSlashingsVector = 64
	c.SyncCommitteeSize = 32
	c.EpochsPerSyncCommitteePeriod = 8
	c.SlotDuration = func() time.Duration { return 6 * time.Second }
	return c
}
