package stacked

import (
	"context"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stacked-drg/porep-verifier/challenges"
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

var (
	ErrMissingCommitment = xerrors.New("missing tau")
	ErrZeroCommitment    = xerrors.New("invalid all zero commitment")
)

// Tau holds the commitments of one partition.
type Tau struct {
	CommD domain.Element
	CommR domain.Element
}

type PublicInputs struct {
	ReplicaID domain.Element
	Seed      [32]byte
	Tau       *Tau
	// K is the partition index, 0 when unset.
	K *uint64
}

// Challenges derives the challenged nodes of partition k.
func (p PublicInputs) Challenges(lc challenges.LayerChallenges, leaves uint64, k uint64) ([]uint64, error) {
	// partition indices enter the derivation as a single byte
	return lc.Derive(leaves, p.ReplicaID, p.Seed, uint8(k))
}

func resolvePartition(inputs PublicInputs, partitionK *uint64) uint64 {
	if partitionK != nil {
		return *partitionK
	}
	if inputs.K != nil {
		return *inputs.K
	}
	return 0
}

func toFr(name string, e domain.Element) (fr.Element, error) {
	x, err := e.Fr()
	if err != nil {
		return x, xerrors.Errorf("%s: %w", name, err)
	}
	return x, nil
}

func frFromIndex(i uint64) fr.Element {
	var x fr.Element
	x.SetUint64(i)
	return x
}

// GeneratePublicInputs lays out the public inputs of one partition:
//
//	replica_id, comm_d, comm_r,
//	then per challenge c:
//	c, base parents of c, expansion parents of c, c, c
//
// matching the openings the circuit makes for c: data leaf in comm_d, the
// parent columns in comm_c, the replica leaf in comm_r_last and the column of
// c in comm_c. Each opening contributes the packed index of its leaf.
func GeneratePublicInputs(inputs PublicInputs, pp *PublicParams, partitionK *uint64) ([]fr.Element, error) {
	if inputs.Tau == nil {
		return nil, ErrMissingCommitment
	}
	k := resolvePartition(inputs, partitionK)

	replicaID, err := toFr("replica_id", inputs.ReplicaID)
	if err != nil {
		return nil, err
	}
	commD, err := toFr("comm_d", inputs.Tau.CommD)
	if err != nil {
		return nil, err
	}
	commR, err := toFr("comm_r", inputs.Tau.CommR)
	if err != nil {
		return nil, err
	}

	graph := pp.Graph
	challenged, err := inputs.Challenges(pp.LayerChallenges, graph.Size(), k)
	if err != nil {
		return nil, xerrors.Errorf("failed to derive challenges: %w", err)
	}

	perChallenge := 3 + graph.BaseDegree() + graph.ExpansionDegree()
	out := make([]fr.Element, 0, 3+uint64(len(challenged))*perChallenge)
	out = append(out, replicaID, commD, commR)
	for _, c := range challenged {
		out = append(out, frFromIndex(c))

		base, err := graph.BaseParents(c)
		if err != nil {
			return nil, err
		}
		for _, p := range base {
			out = append(out, frFromIndex(p))
		}

		exp, err := graph.ExpansionParents(c)
		if err != nil {
			return nil, err
		}
		for _, p := range exp {
			out = append(out, frFromIndex(p))
		}

		out = append(out, frFromIndex(c), frFromIndex(c))
	}
	return out, nil
}

// NumPublicInputs is the length of every partition's input vector.
func NumPublicInputs(pp *PublicParams) uint64 {
	g := pp.Graph
	return 3 + pp.LayerChallenges.ChallengesCount()*(3+g.BaseDegree()+g.ExpansionDegree())
}

// SatisfiesRequirements checks the total challenge count of partitions
// partitions against the requirement.
func SatisfiesRequirements(pp *PublicParams, req challenges.Requirements, partitions uint64) bool {
	return req.Satisfied(pp.LayerChallenges, partitions)
}

// GenerateAllPartitionInputs assembles partitions 0..partitions-1
// concurrently. The result is indexed by partition.
func GenerateAllPartitionInputs(ctx context.Context, inputs PublicInputs, pp *PublicParams, partitions uint64) ([][]fr.Element, error) {
	out := make([][]fr.Element, partitions)
	g, ctx := errgroup.WithContext(ctx)
	for k := uint64(0); k < partitions; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partition, err := GeneratePublicInputs(inputs, pp, &k)
			if err != nil {
				return xerrors.Errorf("partition %d: %w", k, err)
			}
			out[k] = partition
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SealInputs rebuilds the public inputs of every partition of a sealed
// sector from its raw commitments. Zero partitions selects the default
// partition count of the sector size.
func SealInputs(ctx context.Context, sp SetupParams, partitions uint64, commR, commD [32]byte, proverID [32]byte, sectorID abi.SectorNumber, ticket, seed [32]byte) ([][]fr.Element, error) {
	if commD == ([32]byte{}) {
		return nil, xerrors.Errorf("comm_d: %w", ErrZeroCommitment)
	}
	if commR == ([32]byte{}) {
		return nil, xerrors.Errorf("comm_r: %w", ErrZeroCommitment)
	}
	commDSafe, err := domain.TryFromBytes(commD[:])
	if err != nil {
		return nil, xerrors.Errorf("comm_d: %w", err)
	}
	commRSafe, err := domain.TryFromBytes(commR[:])
	if err != nil {
		return nil, xerrors.Errorf("comm_r: %w", err)
	}

	pp, err := Setup(sp)
	if err != nil {
		return nil, err
	}
	if partitions == 0 {
		size, err := SupportedSizeOf(abi.SectorSize(sp.SectorBytes()))
		if err != nil {
			return nil, err
		}
		partitions = size.Partitions()
	}
	inputs := PublicInputs{
		ReplicaID: GenerateReplicaID(proverID, uint64(sectorID), ticket, commD[:], sp.PoRepID),
		Seed:      seed,
		Tau:       &Tau{CommD: commDSafe, CommR: commRSafe},
	}
	return GenerateAllPartitionInputs(ctx, inputs, pp, partitions)
}
