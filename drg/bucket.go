package drg

import (
	"encoding/binary"
	"math"
	"math/bits"

	"golang.org/x/xerrors"
)

// BucketGraph is the DRSample base graph. Node 0 and node 1 only point at
// node 0, every other node gets its predecessor plus degree-1 parents drawn
// from logarithmic distance buckets of the metagraph.
type BucketGraph struct {
	nodes      uint64
	degree     uint64
	seed       [28]byte
	apiVersion APIVersion
}

func NewBucketGraph(nodes, degree uint64, porepID [32]byte, v APIVersion) (*BucketGraph, error) {
	if nodes < 2 {
		return nil, xerrors.Errorf("bucket graph needs at least 2 nodes, got %d", nodes)
	}
	if nodes > math.MaxUint32 {
		return nil, xerrors.Errorf("node count %d does not fit a 32 bit index", nodes)
	}
	if degree < 2 {
		return nil, xerrors.Errorf("bucket graph degree must be at least 2, got %d", degree)
	}
	if v != V1_0_0 && v != V1_1_0 {
		return nil, xerrors.Errorf("unknown api version %d", int(v))
	}
	return &BucketGraph{
		nodes:      nodes,
		degree:     degree,
		seed:       DeriveDRGSeed(porepID),
		apiVersion: v,
	}, nil
}

func (g *BucketGraph) Size() uint64 {
	return g.nodes
}

func (g *BucketGraph) Degree() uint64 {
	return g.degree
}

func (g *BucketGraph) Seed() [28]byte {
	return g.seed
}

// Parents returns the degree parents of node in slot order.
func (g *BucketGraph) Parents(node uint64) ([]uint64, error) {
	if node >= g.nodes {
		return nil, xerrors.Errorf("node %d out of range for graph of size %d", node, g.nodes)
	}
	parents := make([]uint64, g.degree)
	if node < 2 {
		return parents, nil
	}

	var seed [32]byte
	copy(seed[:28], g.seed[:])
	binary.LittleEndian.PutUint32(seed[28:], uint32(node))
	rng := newChaCha8(seed)

	mPrime := g.degree - 1
	metagraphNode := node * mPrime
	// ceil(log2(metagraphNode))
	nBuckets := uint64(bits.Len64(metagraphNode - 1))

	predecessor := mPrime
	others := parents[:mPrime]
	if g.apiVersion != V1_0_0 {
		predecessor = 0
		others = parents[1:]
	}

	for i := range others {
		bucket := rng.Uint64()%nBuckets + 1
		largest := metagraphNode
		if bucket < 64 && uint64(1)<<bucket < largest {
			largest = uint64(1) << bucket
		}
		smallest := largest >> 1
		if smallest < 2 {
			smallest = 2
		}
		distances := largest - smallest + 1
		distance := smallest + rng.Uint64()%distances

		mapped := (metagraphNode - distance) / mPrime
		if mapped == node {
			others[i] = node - 1
		} else {
			others[i] = mapped
		}
	}
	parents[predecessor] = node - 1
	return parents, nil
}
