package bls

import (
	"testing"

	herumi "github.com/herumi/bls-eth-go-binary/bls"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*PublicKey, *Signature, []byte) {
	t.Helper()
	initBLS()
	var sk herumi.SecretKey
	sk.SetByCSPRNG()

	msg := []byte("attestation root")
	sig := sk.SignByte(msg)
	pub := sk.GetPublicKey()

	parsedPub, err := PublicKeyFromBytes(pub.Serialize())
	require.NoError(t, err)
	parsedSig, err := SignatureFromBytes(sig.Serialize())
	require.NoError(t, err)
	return parsedPub, parsedSig, msg
}

func TestVerify_AcceptsGenuineSignature(t *testing.T) {
	pub, sig, msg := newKeyPair(t)
	require.True(t, Verify(pub, msg, sig))
	require.False(t, Verify(pub, []byte("a different message"), sig))
}

func TestPublicKeyFromBytes_RejectsMalformedInput(t *testing.T) {
	_, err := PublicKeyFromBytes([]byte("not a valid compressed key"))
	require.Error(t, err)
}

func TestSignatureFromBytes_RejectsMalformedInput(t *testing.T) {
	_, err := SignatureFromBytes([]byte("not a valid compressed signature"))
	require.Error(t, err)
}

func TestFastAggregateVerify_AllSignersSameMessage(t *testing.T) {
	initBLS()
	msg := []byte("sync committee root")

	var pubs []*PublicKey
	var sigs []herumi.Sign
	for i := 0; i < 3; i++ {
		var sk herumi.SecretKey
		sk.SetByCSPRNG()
		sig := sk.SignByte(msg)
		sigs = append(sigs, *sig)

		parsedPub, err := PublicKeyFromBytes(sk.GetPublicKey().Serialize())
		require.NoError(t, err)
		pubs = append(pubs, parsedPub)
	}

	var agg herumi.Sign
	agg.Aggregate(sigs)
	parsedAgg, err := SignatureFromBytes(agg.Serialize())
	require.NoError(t, err)

	require.True(t, FastAggregateVerify(pubs, msg, parsedAgg))
}

func TestDomain_VariesWithDomainTypeAndForkVersion(t *testing.T) {
	domainType := []byte{0x01, 0x00, 0x00, 0x00}
	forkA := []byte{0x00, 0x00, 0x00, 0x00}
	forkB := []byte{0x01, 0x00, 0x00, 0x00}

	da := Domain(domainType, forkA)
	db := Domain(domainType, forkB)
	require.Len(t, da, 32)
	require.NotEqual(t, da, db, "domain must vary with fork version")
	require.Equal(t, domainType, da[:4])
}
