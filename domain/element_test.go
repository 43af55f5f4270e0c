package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestElementEncoding(t *testing.T) {
	e := FromUint64(0x0102)
	require.Equal(t, byte(0x02), e[0])
	require.Equal(t, byte(0x01), e[1])
	require.True(t, e.IsCanonical())

	x, err := e.Fr()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102), x.Uint64())
	require.Equal(t, e, FromFr(x))
}

func TestNonCanonicalRejected(t *testing.T) {
	var all Element
	for i := range all {
		all[i] = 0xff
	}
	require.False(t, all.IsCanonical())
	_, err := all.Fr()
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = TryFromBytes(all[:])
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = TryFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestFromLEBytesModOrder(t *testing.T) {
	// r itself reduces to zero
	be := fr.Modulus().Bytes()
	le := make([]byte, len(be))
	for i := range be {
		le[len(be)-1-i] = be[i]
	}
	require.True(t, FromLEBytesModOrder(le).IsZero())

	// r + 5 reduces to 5
	v := new(big.Int).Add(fr.Modulus(), big.NewInt(5)).Bytes()
	le = make([]byte, len(v))
	for i := range v {
		le[len(v)-1-i] = v[i]
	}
	require.Equal(t, FromUint64(5), FromLEBytesModOrder(le))
}

func TestElementJSON(t *testing.T) {
	e := FromUint64(7)
	out, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t, "[7,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]", string(out))

	var back Element
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, e, back)
}
