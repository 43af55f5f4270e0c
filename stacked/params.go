package stacked

import (
	"github.com/stacked-drg/porep-verifier/challenges"
	"github.com/stacked-drg/porep-verifier/drg"
	"golang.org/x/xerrors"
)

type APIVersion = drg.APIVersion

const (
	V1_0_0 = drg.V1_0_0
	V1_1_0 = drg.V1_1_0
)

var ParseAPIVersion = drg.ParseAPIVersion

const (
	// NodeSize is the number of sector bytes held by one graph node.
	NodeSize = 32

	DRGDegree = 6
	EXPDegree = 8
)

// SetupParams fully determine the graph shape and the challenge policy.
type SetupParams struct {
	Nodes           uint64
	Degree          uint64
	ExpansionDegree uint64
	PoRepID         [32]byte
	LayerChallenges challenges.LayerChallenges
	APIVersion      APIVersion
}

func (sp SetupParams) Validate() error {
	if sp.Nodes < 2 {
		return xerrors.Errorf("setup needs at least 2 nodes, got %d", sp.Nodes)
	}
	if err := sp.LayerChallenges.Validate(); err != nil {
		return xerrors.Errorf("invalid layer challenges: %w", err)
	}
	return nil
}

// SectorBytes is the sector size the node count corresponds to.
func (sp SetupParams) SectorBytes() uint64 {
	return sp.Nodes * NodeSize
}

// PublicParams own the graph built from a SetupParams. They are read only
// once built and may be shared between goroutines.
type PublicParams struct {
	Graph           *drg.StackedBucketGraph
	LayerChallenges challenges.LayerChallenges
}

func Setup(sp SetupParams) (*PublicParams, error) {
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	graph, err := drg.NewStackedBucketGraph(sp.Nodes, sp.Degree, sp.ExpansionDegree, sp.PoRepID, sp.APIVersion)
	if err != nil {
		return nil, xerrors.Errorf("failed to build graph: %w", err)
	}
	return &PublicParams{
		Graph:           graph,
		LayerChallenges: sp.LayerChallenges,
	}, nil
}

// VerifierParams is the bundle a verifier needs for one porep key.
type VerifierParams struct {
	SetupParams       SetupParams
	VerifyingKey      []byte
	MinimumChallenges uint64
}

func (vp VerifierParams) Requirements() challenges.Requirements {
	return challenges.Requirements{MinimumChallenges: vp.MinimumChallenges}
}

// Key is the porep key the bundle is stored under.
func (vp VerifierParams) Key() ([32]byte, error) {
	return KeyFor(vp.SetupParams)
}
