// Package bls wraps github.com/herumi/bls-eth-go-binary/bls with the
// domain-separation helper the beacon chain spec requires: a signature
// domain is the message's signing domain type concatenated with the active
// fork version, and every verify call is against domain-wrapped signing
// roots, never raw message bytes.
package bls

import (
	"sync"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
)

var initOnce sync.Once

func initBLS() {
	initOnce.Do(func() {
		if err := herumi.Init(herumi.BLS12_381); err != nil {
			panic(errors.Wrap(err, "could not initialize BLS12-381 curve"))
		}
		if err := herumi.SetETHmode(herumi.EthModeDraft07); err != nil {
			panic(errors.Wrap(err, "could not set BLS eth2 mode"))
		}
	})
}

// PublicKey is a compressed BLS12-381 public key.
type PublicKey struct{ p herumi.PublicKey }

// Signature is a compressed BLS12-381 signature.
type Signature struct{ s herumi.Sign }

// PublicKeyFromBytes parses a 48-byte compressed public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	initBLS()
	pk := &PublicKey{}
	if err := pk.p.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize public key")
	}
	return pk, nil
}

// SignatureFromBytes parses a 96-byte compressed signature.
func SignatureFromBytes(b []byte) (*Signature, error) {
	initBLS()
	sig := &Signature{}
	if err := sig.s.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize signature")
	}
	return sig, nil
}

// Verify checks sig over msg under pub.
func Verify(pub *PublicKey, msg []byte, sig *Signature) bool {
	initBLS()
	return sig.s.Verify(&pub.p, string(msg))
}

// AggregateVerify checks a single aggregated signature over distinct
// messages under distinct public keys, the form used for attestation
// aggregates where each participant signed the same AttestationData but
// contributes one key.
func AggregateVerify(pubs []*PublicKey, msgs [][]byte, sig *Signature) bool {
	initBLS()
	if len(pubs) != len(msgs) || len(pubs) == 0 {
		return false
	}
	strs := make([]string, len(msgs))
	for i, m := range msgs {
		strs[i] = string(m)
	}
	raw := make([]herumi.PublicKey, len(pubs))
	for i, p := range pubs {
		raw[i] = p.p
	}
	return sig.s.AggregateVerifyNoCheck(raw, strs)
}

// FastAggregateVerify checks a single aggregated signature over one shared
// message under many public keys, the form used for sync committee
// aggregates.
func FastAggregateVerify(pubs []*PublicKey, msg []byte, sig *Signature) bool {
	initBLS()
	raw := make([]herumi.PublicKey, len(pubs))
	for i, p := range pubs {
		raw[i] = p.p
	}
	return sig.s.FastAggregateVerify(raw, string(msg))
}

// Domain returns the signature domain: the 4-byte domainType concatenated
// with the first 28 bytes of forkVersion zero-padded to 32 bytes; no
// fork-data root is hashed.
// Mirrors the teacher's bls.Domain(domainType, forkVersion) call shape.
func Domain(domainType, forkVersion []byte) []byte {
	forkDataRoot := foldForkVersion(forkVersion)
	out := make([]byte, 32)
	copy(out[:4], domainType)
	copy(out[4:], forkDataRoot[:28])
	return out
}

func foldForkVersion(forkVersion []byte) [32]byte {
	var padded [32]byte
	copy(padded[:], forkVersion)
	return padded
}
