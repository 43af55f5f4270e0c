// Package domain holds the field element encoding shared by every hasher and by
// the public inputs of the stacked DRG circuit.
//
// Elements live in the BLS12-381 scalar field and are carried as their canonical
// 32 byte little-endian representation.
package domain

import (
	"encoding/hex"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/xerrors"
)

// Size of an encoded element in bytes.
const Size = fr.Bytes

// Kind tags which hash family an element was produced by.
type Kind int

const (
	Sha256 Kind = iota
	MiMC
)

func (k Kind) String() string {
	switch k {
	case Sha256:
		return "sha256"
	case MiMC:
		return "mimc"
	default:
		return "unknown"
	}
}

// Element is a canonical little-endian encoded BLS12-381 scalar.
type Element [Size]byte

var ErrNonCanonical = xerrors.New("element is not a canonical field encoding")

// FromFr encodes a field element.
func FromFr(x fr.Element) Element {
	be := x.Bytes()
	var e Element
	for i := 0; i < Size; i++ {
		e[i] = be[Size-1-i]
	}
	return e
}

func FromUint64(v uint64) Element {
	var x fr.Element
	x.SetUint64(v)
	return FromFr(x)
}

// FromLEBytesModOrder reads b as a little-endian integer and reduces it modulo r.
func FromLEBytesModOrder(b []byte) Element {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	var x fr.Element
	x.SetBytes(be)
	return FromFr(x)
}

// TryFromBytes accepts exactly Size bytes holding a canonical encoding.
func TryFromBytes(b []byte) (Element, error) {
	var e Element
	if len(b) != Size {
		return e, xerrors.Errorf("invalid element length %d, expected %d", len(b), Size)
	}
	copy(e[:], b)
	if !e.IsCanonical() {
		return e, ErrNonCanonical
	}
	return e, nil
}

func (e Element) bigInt() *big.Int {
	be := make([]byte, Size)
	for i := 0; i < Size; i++ {
		be[i] = e[Size-1-i]
	}
	return new(big.Int).SetBytes(be)
}

// IsCanonical reports whether the encoded integer is below the field order.
func (e Element) IsCanonical() bool {
	return e.bigInt().Cmp(fr.Modulus()) < 0
}

// Fr decodes the element, rejecting non-canonical encodings.
func (e Element) Fr() (fr.Element, error) {
	var x fr.Element
	if !e.IsCanonical() {
		return x, ErrNonCanonical
	}
	x.SetBigInt(e.bigInt())
	return x, nil
}

// Bytes returns the little-endian encoding.
func (e Element) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, e[:])
	return out
}

func (e Element) IsZero() bool {
	return e == Element{}
}

func (e Element) String() string {
	return hex.EncodeToString(e[:])
}
