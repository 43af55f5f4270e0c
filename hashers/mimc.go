package hashers

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	"github.com/stacked-drg/porep-verifier/domain"
)

// MiMC is the algebraic hash family used for replica-side commitments.
type MiMC struct{}

func (MiMC) Kind() domain.Kind { return domain.MiMC }

// Hash splits data into 32 byte little-endian words and absorbs them in
// order, each word reduced into the field.
func (m MiMC) Hash(data []byte) domain.Element {
	var words []domain.Element
	for off := 0; off < len(data); off += domain.Size {
		end := off + domain.Size
		if end > len(data) {
			end = len(data)
		}
		var w domain.Element
		copy(w[:], data[off:end])
		words = append(words, w)
	}
	return m.absorb(words...)
}

func (m MiMC) HashPair(a, b domain.Element) domain.Element {
	return m.absorb(a, b)
}

func (MiMC) absorb(words ...domain.Element) domain.Element {
	h := mimc.NewMiMC()
	for _, w := range words {
		var x fr.Element
		x.SetBytes(reverse(w[:]))
		b := x.Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return domain.FromFr(out)
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
