package hashers

import (
	"github.com/minio/sha256-simd"
	"github.com/stacked-drg/porep-verifier/domain"
)

// Sha256 is SHA-256 truncated to 254 bits so that every digest is a field element.
type Sha256 struct{}

func (Sha256) Kind() domain.Kind { return domain.Sha256 }

func (Sha256) Hash(data []byte) domain.Element {
	return trim(sha256.Sum256(data))
}

func (Sha256) HashPair(a, b domain.Element) domain.Element {
	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return trim(out)
}

// Trim clears the two top bits of the last byte.
func Trim(digest [32]byte) [32]byte {
	digest[31] &= 0x3f
	return digest
}

func trim(digest [32]byte) domain.Element {
	return domain.Element(Trim(digest))
}
