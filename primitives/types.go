// Package primitives defines the fixed-width integer aliases and structured
// containers that make up the beacon chain's canonical data model. Every
// container here is a plain struct with ssz tags so that go-ssz can derive
// hash-tree-roots and signing-roots by reflection, without codegen.
package primitives

import (
	eth2types "github.com/prysmaticlabs/eth2-types"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

// Slot is the fundamental time unit; blocks are proposed per slot.
type Slot = eth2types.Slot

// Epoch is a fixed span of slots over which justification and rewards operate.
type Epoch = eth2types.Epoch

// ValidatorIndex identifies a validator's position in the registry.
type ValidatorIndex = eth2types.ValidatorIndex

// Gwei is an amount of the native asset, denominated in gwei.
type Gwei uint64

// Root is a 32-byte Merkle root or block root.
type Root [32]byte

// BLSPubkey is a compressed BLS12-381 public key.
type BLSPubkey [48]byte

// BLSSignature is a compressed BLS12-381 signature.
type BLSSignature [96]byte

// Checkpoint names a justified or finalized epoch boundary block.
type Checkpoint struct {
	Epoch Epoch `ssz-size:"8"`
	Root  []byte `ssz-size:"32"`
}

// Root32 returns Root as a fixed-size array, the form map-keyed fork-choice
// and cache lookups need. A nil or short Root yields the zero root.
func (c Checkpoint) Root32() [32]byte {
	var r [32]byte
	copy(r[:], c.Root)
	return r
}

// Fork describes the current and previous fork versions and the epoch of
// the transition between them.
type Fork struct {
	PreviousVersion []byte `ssz-size:"4"`
	CurrentVersion  []byte `ssz-size:"4"`
	Epoch           Epoch
}

// Validator is a registry record. Invariant: once ExitEpoch is set it never
// decreases; ActivationEpoch <= ExitEpoch.
type Validator struct {
	PublicKey                 []byte `ssz-size:"48"`
	WithdrawalCredentials     []byte `ssz-size:"32"`
	EffectiveBalance           Gwei
	Slashed                    bool
	ActivationEligibilityEpoch Epoch
	ActivationEpoch            Epoch
	ExitEpoch                  Epoch
	WithdrawableEpoch          Epoch
}

// Eth1Data is a vote on the deposit contract's observed state.
type Eth1Data struct {
	DepositRoot  []byte `ssz-size:"32"`
	DepositCount uint64
	BlockHash    []byte `ssz-size:"32"`
}

// AttestationData identifies what an attestation is voting for.
type AttestationData struct {
	Slot            Slot
	CommitteeIndex  uint64
	BeaconBlockRoot []byte `ssz-size:"32"`
	Source          *Checkpoint
	Target          *Checkpoint
}

// Attestation is a committee vote: aggregation bits over the committee plus
// an aggregated BLS signature.
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       []byte `ssz-size:"96"`
}

// IndexedAttestation is the validator-index form of an attestation, used in
// slashing proofs and in fork-choice weight accounting.
type IndexedAttestation struct {
	AttestingIndices []uint64
	Data             *AttestationData
	Signature        []byte `ssz-size:"96"`
}

// Deposit is a validator registration/top-up proven by a Merkle branch
// against the deposit contract root.
type Deposit struct {
	Proof [][]byte `ssz-size:"33,32"`
	Data  *DepositData
}

// DepositData is the signed payload of a Deposit.
type DepositData struct {
	PublicKey             []byte `ssz-size:"48"`
	WithdrawalCredentials []byte `ssz-size:"32"`
	Amount                Gwei
	Signature             []byte `ssz-size:"96"`
}

// VoluntaryExit signals a validator's intent to exit at or after Epoch.
type VoluntaryExit struct {
	Epoch          Epoch
	ValidatorIndex ValidatorIndex
}

// SignedVoluntaryExit is a VoluntaryExit with the validator's signature.
type SignedVoluntaryExit struct {
	Exit      *VoluntaryExit
	Signature []byte `ssz-size:"96"`
}

// ProposerSlashing proves a proposer double-signed two block headers for
// the same slot.
type ProposerSlashing struct {
	Header1 *SignedBeaconBlockHeader
	Header2 *SignedBeaconBlockHeader
}

// AttesterSlashing proves two attestations from overlapping validators are
// mutually slashable (double vote or surround vote).
type AttesterSlashing struct {
	Attestation1 *IndexedAttestation
	Attestation2 *IndexedAttestation
}

// BeaconBlockHeader is the compact, fixed-size block header: everything
// needed to verify chaining and signatures without the full body.
type BeaconBlockHeader struct {
	Slot          Slot
	ProposerIndex ValidatorIndex
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	BodyRoot      []byte `ssz-size:"32"`
}

// SignedBeaconBlockHeader is a BeaconBlockHeader with its proposer signature.
type SignedBeaconBlockHeader struct {
	Header    *BeaconBlockHeader
	Signature []byte `ssz-size:"96"`
}

// SyncAggregate is the sync committee's aggregate signature over a recent
// block root, used by light clients.
type SyncAggregate struct {
	SyncCommitteeBits      bitfield.Bitvector512
	SyncCommitteeSignature []byte `ssz-size:"96"`
}

// SyncCommittee is a rotating subset of validators that sign light-client
// friendly aggregates each period.
type SyncCommittee struct {
	Pubkeys         [][]byte `ssz-size:"512,48"`
	AggregatePubkey []byte   `ssz-size:"48"`
}

// ExecutionPayloadHeader is the beacon chain's view of the attached
// execution-layer block: enough to verify chaining, not to re-execute it.
type ExecutionPayloadHeader struct {
	ParentHash       []byte `ssz-size:"32"`
	FeeRecipient     []byte `ssz-size:"20"`
	StateRoot        []byte `ssz-size:"32"`
	ReceiptsRoot     []byte `ssz-size:"32"`
	LogsBloom        []byte `ssz-size:"256"`
	PrevRandao       []byte `ssz-size:"32"`
	BlockNumber      uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte `ssz-max:"32"`
	BaseFeePerGas    []byte `ssz-size:"32"`
	BlockHash        []byte `ssz-size:"32"`
	TransactionsRoot []byte `ssz-size:"32"`
}

// ExecutionPayload is the full execution-layer block body attached to a
// beacon block. The consensus core treats its contents as opaque beyond the
// header-consistency fields; validity itself is delegated to the execution
// engine collaborator.
type ExecutionPayload struct {
	Header       *ExecutionPayloadHeader
	Transactions [][]byte `ssz-max:"1048576,1073741824"`
}

// BeaconBlockBody carries all block-level operations plus randao, eth1 vote,
// graffiti, sync aggregate, and execution payload.
type BeaconBlockBody struct {
	RandaoReveal      []byte `ssz-size:"96"`
	Eth1Data          *Eth1Data
	Graffiti          []byte `ssz-size:"32"`
	ProposerSlashings []*ProposerSlashing `ssz-max:"16"`
	AttesterSlashings []*AttesterSlashing `ssz-max:"2"`
	Attestations      []*Attestation      `ssz-max:"128"`
	Deposits          []*Deposit          `ssz-max:"16"`
	VoluntaryExits    []*SignedVoluntaryExit `ssz-max:"16"`
	SyncAggregate     *SyncAggregate
	ExecutionPayload  *ExecutionPayload
}

// BeaconBlock is a block header plus its body.
type BeaconBlock struct {
	Slot          Slot
	ProposerIndex ValidatorIndex
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	Body          *BeaconBlockBody
}

// SignedBeaconBlock is a BeaconBlock with the proposer's signature.
type SignedBeaconBlock struct {
	Block     *BeaconBlock
	Signature []byte `ssz-size:"96"`
}

// ParticipationFlags packs the per-epoch source/target/head attestation
// flags for one validator into a single byte.
type ParticipationFlags = uint8

const (
	TimelySourceFlag ParticipationFlags = 1 << iota
	TimelyTargetFlag
	TimelyHeadFlag
)

// BeaconState is the hard snapshot of chain state that the transition
// function maps pre -> post across. Invariants: len(Validators) ==
// len(Balances) == len(CurrentEpochParticipation); Finalized.Epoch <=
// PreviousJustified.Epoch <= CurrentJustified.Epoch.
type BeaconState struct {
	GenesisTime                 uint64
	GenesisValidatorsRoot       []byte `ssz-size:"32"`
	Slot                        Slot
	Fork                        *Fork
	LatestBlockHeader           *BeaconBlockHeader
	BlockRoots                  [][]byte `ssz-size:"8192,32"`
	StateRoots                  [][]byte `ssz-size:"8192,32"`
	HistoricalRoots             [][]byte `ssz-size:"?,32" ssz-max:"16777216"`
	Eth1Data                    *Eth1Data
	Eth1DataVotes               []*Eth1Data `ssz-max:"2048"`
	Eth1DepositIndex            uint64
	Validators                  []*Validator `ssz-max:"1099511627776"`
	Balances                    []Gwei       `ssz-max:"1099511627776"`
	RandaoMixes                 [][]byte     `ssz-size:"65536,32"`
	Slashings                   []Gwei       `ssz-size:"8192"`
	PreviousEpochParticipation  []ParticipationFlags `ssz-max:"1099511627776"`
	CurrentEpochParticipation   []ParticipationFlags `ssz-max:"1099511627776"`
	JustificationBits           bitfield.Bitvector4
	PreviousJustifiedCheckpoint *Checkpoint
	CurrentJustifiedCheckpoint  *Checkpoint
	FinalizedCheckpoint         *Checkpoint
	InactivityScores            []uint64 `ssz-max:"1099511627776"`
	CurrentSyncCommittee        *SyncCommittee
	NextSyncCommittee           *SyncCommittee
	LatestExecutionPayloadHeader *ExecutionPayloadHeader
}

// Clone returns a deep-enough copy of the state suitable for copy-on-write
// mutation: top-level slices are re-sliced (not re-allocated element by
// element) and re-assigned on mutation by the caller, giving the
// structural-sharing behavior CachedBeaconState relies on.
func (s *BeaconState) Clone() *BeaconState {
	if s == nil {
		return nil
	}
	cpy := *s
	return &cpy
}
