package hashers

import (
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/xerrors"
)

// Leaves cuts data into 32 byte nodes and hashes each one into a leaf.
// The final node is zero padded.
func Leaves(h Hasher, data []byte) []domain.Element {
	var leaves []domain.Element
	for off := 0; off < len(data); off += domain.Size {
		var node [domain.Size]byte
		copy(node[:], data[off:])
		leaves = append(leaves, h.Hash(node[:]))
	}
	return leaves
}

// MerkleRoot folds a power-of-two number of leaves into a binary tree root.
func MerkleRoot(h Hasher, leaves []domain.Element) (domain.Element, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return domain.Element{}, xerrors.Errorf("merkle tree needs a power of two number of leaves, got %d", n)
	}
	level := make([]domain.Element, n)
	copy(level, leaves)
	for len(level) > 1 {
		next := make([]domain.Element, len(level)/2)
		for i := range next {
			next[i] = h.HashPair(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0], nil
}

// Commit pads the leaf count of data up to a power of two with zero leaves
// and returns the tree root.
func Commit(h Hasher, data []byte) (domain.Element, error) {
	leaves := Leaves(h, data)
	size := 1
	for size < len(leaves) {
		size <<= 1
	}
	for len(leaves) < size {
		leaves = append(leaves, domain.Element{})
	}
	return MerkleRoot(h, leaves)
}
