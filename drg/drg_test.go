package drg

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func keystream(r *chachaRng, words int) []byte {
	out := make([]byte, 0, 4*words)
	for i := 0; i < words; i++ {
		w := r.Uint32()
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}

func TestChaChaZeroKeyVectors(t *testing.T) {
	var zero [32]byte
	require.Equal(t,
		"76b8e0ada0f13d90405d6ae55386bd28bdd219b8a08ded1aa836efcc8b770dc7da41597c5157488d7724e03fb8d84a376a43b8f41518a11cc387b669b2ee6586",
		hex.EncodeToString(keystream(newChaCha(zero, 20), 16)))
	require.Equal(t,
		"3e00ef2f895f40d67f5bb8e81f09a5a12c840ec3ce9a7f3b181be188ef711a1e984ce172b9216f419f445367456d5619314a42a3da86b001387bfdb80e0cfe42",
		hex.EncodeToString(keystream(newChaCha8(zero), 16)))
}

func TestChaCha8Uint64AcrossBlocks(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	want := []uint64{
		0x01dc9c6fafa8183a, 0x4e5009beb1ed4149, 0xb53487ed739cf39c, 0x67cdd52cda88787a,
		0xc0dc8ec263654be4, 0xd665a8ed935b8d42, 0x0cd7460a7a653255, 0xf7d4fafbcd06204b,
		0xada6826773c82f66, 0xa4d0cab9a9d5dc2c,
	}
	r := newChaCha8(seed)
	for i, w := range want {
		require.Equal(t, w, r.Uint64(), "word %d", i)
	}
}

func TestBucketGraphParents(t *testing.T) {
	var porepID [32]byte
	cases := []struct {
		v       APIVersion
		node    uint64
		parents []uint64
	}{
		{V1_0_0, 0, []uint64{0, 0, 0, 0, 0, 0}},
		{V1_0_0, 1, []uint64{0, 0, 0, 0, 0, 0}},
		{V1_0_0, 2, []uint64{0, 1, 1, 1, 1, 1}},
		{V1_0_0, 3, []uint64{1, 2, 1, 2, 1, 2}},
		{V1_0_0, 100, []uint64{70, 97, 99, 76, 77, 99}},
		{V1_0_0, 511, []uint64{234, 462, 510, 141, 502, 510}},
		{V1_1_0, 2, []uint64{1, 0, 1, 1, 1, 1}},
		{V1_1_0, 3, []uint64{2, 1, 2, 1, 2, 1}},
		{V1_1_0, 100, []uint64{99, 70, 97, 99, 76, 77}},
		{V1_1_0, 511, []uint64{510, 234, 462, 510, 141, 502}},
	}
	for _, c := range cases {
		g, err := NewBucketGraph(512, 6, porepID, c.v)
		require.NoError(t, err)
		got, err := g.Parents(c.node)
		require.NoError(t, err)
		require.Equal(t, c.parents, got, "%s node %d", c.v, c.node)
	}
}

func TestBucketGraphDegreeTwo(t *testing.T) {
	porepID := [32]byte{5}
	g, err := NewBucketGraph(64, 2, porepID, V1_1_0)
	require.NoError(t, err)

	got, err := g.Parents(40)
	require.NoError(t, err)
	require.Equal(t, []uint64{39, 36}, got)

	got, err = g.Parents(2)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 0}, got)
}

func TestExpansionParents(t *testing.T) {
	var porepID [32]byte
	g, err := NewStackedBucketGraph(512, 6, 8, porepID, V1_1_0)
	require.NoError(t, err)

	want := map[uint64][]uint64{
		0:   {135, 152, 389, 110, 417, 43, 316, 341},
		1:   {61, 369, 349, 158, 480, 12, 501, 76},
		2:   {232, 471, 340, 452, 261, 366, 420, 83},
		100: {220, 381, 366, 276, 15, 501, 104, 10},
		511: {396, 333, 410, 119, 425, 476, 207, 105},
	}
	for node, parents := range want {
		got, err := g.ExpansionParents(node)
		require.NoError(t, err)
		require.Equal(t, parents, got, "node %d", node)
	}
}

func TestStackedGraphParents(t *testing.T) {
	porepID := [32]byte{5}
	g, err := NewStackedBucketGraph(64, 6, 8, porepID, V1_1_0)
	require.NoError(t, err)
	require.Equal(t, uint64(64), g.Size())
	require.Equal(t, uint64(14), g.Degree())

	got, err := g.Parents(7)
	require.NoError(t, err)
	require.Len(t, got, 14)
	require.Equal(t, []uint64{34, 51, 21, 16, 9, 39, 56, 48}, got[6:])

	base, err := g.BaseParents(2)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 1, 1, 0, 1, 0}, base)
}

func TestGraphsAreDeterministic(t *testing.T) {
	porepID := [32]byte{1, 2, 3}
	a, err := NewStackedBucketGraph(1<<12, 6, 8, porepID, V1_1_0)
	require.NoError(t, err)
	b, err := NewStackedBucketGraph(1<<12, 6, 8, porepID, V1_1_0)
	require.NoError(t, err)

	for node := uint64(0); node < a.Size(); node += 37 {
		pa, err := a.Parents(node)
		require.NoError(t, err)
		pb, err := b.Parents(node)
		require.NoError(t, err)
		require.Equal(t, pa, pb)
		for _, p := range pa[:6] {
			if node > 0 {
				require.Less(t, p, node)
			}
		}
		for _, p := range pa[6:] {
			require.Less(t, p, a.Size())
		}
	}
}

func TestGraphValidation(t *testing.T) {
	var porepID [32]byte
	_, err := NewBucketGraph(1, 6, porepID, V1_1_0)
	require.Error(t, err)
	_, err = NewBucketGraph(512, 1, porepID, V1_1_0)
	require.Error(t, err)
	_, err = NewBucketGraph(512, 6, porepID, APIVersion(7))
	require.Error(t, err)

	g, err := NewStackedBucketGraph(512, 6, 8, porepID, V1_1_0)
	require.NoError(t, err)
	_, err = g.Parents(512)
	require.Error(t, err)
}

func TestAPIVersionText(t *testing.T) {
	for _, v := range []APIVersion{V1_0_0, V1_1_0} {
		text, err := v.MarshalText()
		require.NoError(t, err)
		var back APIVersion
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, v, back)
	}
	_, err := ParseAPIVersion("V2")
	require.Error(t, err)
}
