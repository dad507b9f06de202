package hashutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash_DeterministicAndSensitiveToInput(t *testing.T) {
	a := Hash([]byte("beacon"))
	b := Hash([]byte("beacon"))
	c := Hash([]byte("chain"))

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

type marshalable struct{ b []byte }

func (m marshalable) Marshal() ([]byte, error) { return m.b, nil }

func TestHashProto_HashesMarshaledBytes(t *testing.T) {
	got, err := HashProto(marshalable{b: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, Hash([]byte("x")), got)
}
