package blocks

import (
	"github.com/pkg/errors"

	"github.com/lightcrest/beacon-chain/core/helpers"
	"github.com/lightcrest/beacon-chain/crypto/bls"
	"github.com/lightcrest/beacon-chain/crypto/hashutil"
	"github.com/lightcrest/beacon-chain/params"
	"github.com/lightcrest/beacon-chain/primitives"
)

// ProcessRandao verifies the proposer's randao reveal signature over the
// current epoch and mixes its hash into the randao accumulator.
func ProcessRandao(cfg *params.BeaconChainConfig, state *primitives.BeaconState, body *primitives.BeaconBlockBody, verifySignature bool) error {
	epoch := helpers.CurrentEpoch(cfg, uint64(state.Slot))

	if verifySignature {
		proposerIdx, err := helpers.BeaconProposerIndex(cfg, state, nil)
		if err != nil {
			return errors.Wrap(err, "could not compute proposer index")
		}
		proposer := state.Validators[proposerIdx]
		pub, err := bls.PublicKeyFromBytes(proposer.PublicKey)
		if err != nil {
			return errors.Wrap(err, "could not deserialize proposer public key")
		}
		sig, err := bls.SignatureFromBytes(body.RandaoReveal)
		if err != nil {
			return errors.Wrap(err, "could not deserialize randao reveal")
		}
		domain := helpers.Domain(state.Fork, epoch, cfg.DomainRandao)
		root, err := epochSigningRoot(epoch, domain)
		if err != nil {
			return err
		}
		if !bls.Verify(pub, root[:], sig) {
			return errors.New("invalid randao reveal signature")
		}
	}

	mix := hashutil.Hash(body.RandaoReveal)
	idx := epoch % cfg.EpochsPerHistoricalVector
	current := state.RandaoMixes[idx]
	mixed := make([]byte, 32)
	for i := 0; i < 32; i++ {
		mixed[i] = current[i] ^ mix[i]
	}
	state.RandaoMixes[idx] = mixed
	return nil
}

func epochSigningRoot(epoch uint64, domain []byte) ([32]byte, error) {
	type signingData struct {
		Epoch  uint64
		Domain []byte `ssz-size:"32"`
	}
	return sszSigningRoot(&signingData{Epoch: epoch, Domain: domain})
}
