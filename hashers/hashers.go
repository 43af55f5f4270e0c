package hashers

import (
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/xerrors"
)

// Hasher is one hash family over domain elements. Implementations differ only
// in the compression function, every output is a canonical domain.Element.
type Hasher interface {
	Kind() domain.Kind
	// Hash digests arbitrary bytes into an element.
	Hash(data []byte) domain.Element
	// HashPair compresses two tree nodes into their parent.
	HashPair(a, b domain.Element) domain.Element
}

// ForKind returns the hasher registered for k.
func ForKind(k domain.Kind) (Hasher, error) {
	switch k {
	case domain.Sha256:
		return Sha256{}, nil
	case domain.MiMC:
		return MiMC{}, nil
	default:
		return nil, xerrors.Errorf("no hasher for domain kind %d", k)
	}
}

// ByName resolves the names accepted on the command line, the String of
// each domain.Kind.
func ByName(name string) (Hasher, error) {
	for _, k := range []domain.Kind{domain.Sha256, domain.MiMC} {
		if k.String() == name {
			return ForKind(k)
		}
	}
	return nil, xerrors.Errorf("unknown hasher %q", name)
}
