package drg

import (
	"math"

	"golang.org/x/xerrors"
)

// StackedBucketGraph layers an expander over a BucketGraph. The expander
// parents of a node come from a keyed Feistel permutation of the
// nodes*expansionDegree metagraph.
type StackedBucketGraph struct {
	base            *BucketGraph
	expansionDegree uint64
	feistelKeys     [4]uint64
	feistel         feistelPrecomputed
}

func NewStackedBucketGraph(nodes, baseDegree, expansionDegree uint64, porepID [32]byte, v APIVersion) (*StackedBucketGraph, error) {
	base, err := NewBucketGraph(nodes, baseDegree, porepID, v)
	if err != nil {
		return nil, xerrors.Errorf("failed to create base graph: %w", err)
	}
	if expansionDegree > 0 && nodes > math.MaxUint64/expansionDegree {
		return nil, xerrors.Errorf("expansion metagraph of %d nodes with degree %d overflows", nodes, expansionDegree)
	}
	return &StackedBucketGraph{
		base:            base,
		expansionDegree: expansionDegree,
		feistelKeys:     DeriveFeistelKeys(porepID),
		feistel:         precomputeFeistel(nodes * expansionDegree),
	}, nil
}

func (g *StackedBucketGraph) Size() uint64 {
	return g.base.Size()
}

func (g *StackedBucketGraph) BaseGraph() *BucketGraph {
	return g.base
}

func (g *StackedBucketGraph) BaseDegree() uint64 {
	return g.base.Degree()
}

func (g *StackedBucketGraph) ExpansionDegree() uint64 {
	return g.expansionDegree
}

// Degree is the total number of parents of a node.
func (g *StackedBucketGraph) Degree() uint64 {
	return g.base.Degree() + g.expansionDegree
}

func (g *StackedBucketGraph) BaseParents(node uint64) ([]uint64, error) {
	return g.base.Parents(node)
}

func (g *StackedBucketGraph) ExpansionParents(node uint64) ([]uint64, error) {
	if node >= g.Size() {
		return nil, xerrors.Errorf("node %d out of range for graph of size %d", node, g.Size())
	}
	parents := make([]uint64, g.expansionDegree)
	for i := range parents {
		parents[i] = g.correspondent(node, uint64(i))
	}
	return parents, nil
}

// Parents returns the base parents followed by the expansion parents.
func (g *StackedBucketGraph) Parents(node uint64) ([]uint64, error) {
	base, err := g.BaseParents(node)
	if err != nil {
		return nil, err
	}
	exp, err := g.ExpansionParents(node)
	if err != nil {
		return nil, err
	}
	return append(base, exp...), nil
}

// correspondent maps column i of node through the permutation back to a node.
// The permuted index is narrowed to 32 bits before the division, as provers
// do, which matters once nodes*expansionDegree exceeds 2^32.
func (g *StackedBucketGraph) correspondent(node, i uint64) uint64 {
	a := node*g.expansionDegree + i
	transformed := permute(g.Size()*g.expansionDegree, a, &g.feistelKeys, g.feistel)
	return uint64(uint32(transformed)) / g.expansionDegree
}
