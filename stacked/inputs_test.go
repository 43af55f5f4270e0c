package stacked

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stacked-drg/porep-verifier/challenges"
	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stretchr/testify/require"
)

func scenarioParams(t *testing.T, layers, maxCount uint64) *PublicParams {
	pp, err := Setup(SetupParams{
		Nodes:           512,
		Degree:          DRGDegree,
		ExpansionDegree: EXPDegree,
		LayerChallenges: challenges.New(layers, maxCount),
		APIVersion:      V1_1_0,
	})
	require.NoError(t, err)
	return pp
}

func scenarioInputs() PublicInputs {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	return PublicInputs{
		ReplicaID: domain.FromUint64(1),
		Seed:      seed,
		Tau: &Tau{
			CommD: domain.FromUint64(11),
			CommR: domain.FromUint64(22),
		},
	}
}

func index(i uint64) fr.Element {
	var x fr.Element
	x.SetUint64(i)
	return x
}

func TestGeneratePublicInputsLayout(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	inputs := scenarioInputs()

	got, err := GeneratePublicInputs(inputs, pp, nil)
	require.NoError(t, err)
	require.Len(t, got, 3+2*(3+6+8))
	require.Equal(t, uint64(len(got)), NumPublicInputs(pp))

	require.Equal(t, index(1), got[0])
	require.Equal(t, index(11), got[1])
	require.Equal(t, index(22), got[2])

	challenged, err := inputs.Challenges(pp.LayerChallenges, 512, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{378, 188}, challenged)

	pos := 3
	for _, c := range challenged {
		require.Equal(t, index(c), got[pos])
		pos++
		parents, err := pp.Graph.Parents(c)
		require.NoError(t, err)
		for _, p := range parents {
			require.Equal(t, index(p), got[pos])
			pos++
		}
		require.Equal(t, index(c), got[pos])
		require.Equal(t, index(c), got[pos+1])
		pos += 2
	}
	require.Equal(t, len(got), pos)
}

func TestGeneratePublicInputsPartitionSelection(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	inputs := scenarioInputs()

	one := uint64(1)
	explicit, err := GeneratePublicInputs(inputs, pp, &one)
	require.NoError(t, err)
	require.Equal(t, index(334), explicit[3])

	inputs.K = &one
	fromInputs, err := GeneratePublicInputs(inputs, pp, nil)
	require.NoError(t, err)
	require.Equal(t, explicit, fromInputs)

	zero := uint64(0)
	overridden, err := GeneratePublicInputs(inputs, pp, &zero)
	require.NoError(t, err)
	require.Equal(t, index(378), overridden[3])
}

func TestGeneratePublicInputsMissingTau(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	inputs := scenarioInputs()
	inputs.Tau = nil

	_, err := GeneratePublicInputs(inputs, pp, nil)
	require.ErrorIs(t, err, ErrMissingCommitment)
}

func TestGeneratePublicInputsNonCanonical(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	inputs := scenarioInputs()
	for i := range inputs.Tau.CommR {
		inputs.Tau.CommR[i] = 0xff
	}
	_, err := GeneratePublicInputs(inputs, pp, nil)
	require.ErrorIs(t, err, domain.ErrNonCanonical)
}

func TestAllPartitionsMatchSequential(t *testing.T) {
	pp := scenarioParams(t, 3, 2)
	inputs := scenarioInputs()

	all, err := GenerateAllPartitionInputs(context.Background(), inputs, pp, 6)
	require.NoError(t, err)
	require.Len(t, all, 6)

	for k := uint64(0); k < 6; k++ {
		k := k
		seq, err := GeneratePublicInputs(inputs, pp, &k)
		require.NoError(t, err)
		require.Equal(t, seq, all[k], "partition %d", k)
	}
	require.NotEqual(t, all[0], all[1])
}

func TestAllPartitionsPropagatesErrors(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	inputs := scenarioInputs()
	inputs.Tau = nil

	_, err := GenerateAllPartitionInputs(context.Background(), inputs, pp, 3)
	require.ErrorIs(t, err, ErrMissingCommitment)
}

func TestSatisfiesRequirements(t *testing.T) {
	pp := scenarioParams(t, 2, 1)
	require.True(t, SatisfiesRequirements(pp, challenges.Requirements{MinimumChallenges: 2}, 1))
	require.False(t, SatisfiesRequirements(pp, challenges.Requirements{MinimumChallenges: 3}, 1))
	require.True(t, SatisfiesRequirements(pp, challenges.Requirements{MinimumChallenges: 4}, 2))
}

func TestSealInputs(t *testing.T) {
	sp, err := SetupParamsFor(SectorSize2KiB, 1, PoRepIDFor(abi.RegisteredSealProof_StackedDrg2KiBV1_1), V1_1_0)
	require.NoError(t, err)

	prover := ProverIDFromAccount("alice")
	var commR, commD, ticket, seed [32]byte
	commR[0], commD[0], ticket[0], seed[0] = 1, 2, 3, 4

	all, err := SealInputs(context.Background(), sp, 1, commR, commD, prover, 7, ticket, seed)
	require.NoError(t, err)
	require.Len(t, all, 1)

	replicaID := GenerateReplicaID(prover, 7, ticket, commD[:], sp.PoRepID)
	x, err := replicaID.Fr()
	require.NoError(t, err)
	require.Equal(t, x, all[0][0])

	def, err := SealInputs(context.Background(), sp, 0, commR, commD, prover, 7, ticket, seed)
	require.NoError(t, err)
	require.Len(t, def, int(SectorSize2KiB.Partitions()))
	require.Equal(t, all, def)

	_, err = SealInputs(context.Background(), sp, 1, [32]byte{}, commD, prover, 7, ticket, seed)
	require.ErrorIs(t, err, ErrZeroCommitment)
	_, err = SealInputs(context.Background(), sp, 1, commR, [32]byte{}, prover, 7, ticket, seed)
	require.ErrorIs(t, err, ErrZeroCommitment)
}

func TestSetupRejectsBadParams(t *testing.T) {
	_, err := Setup(SetupParams{Nodes: 1, Degree: 6, ExpansionDegree: 8, LayerChallenges: challenges.New(2, 1)})
	require.Error(t, err)
	_, err = Setup(SetupParams{Nodes: 512, Degree: 6, ExpansionDegree: 8, LayerChallenges: challenges.New(0, 1)})
	require.Error(t, err)
	_, err = Setup(SetupParams{Nodes: 512, Degree: 1, ExpansionDegree: 8, LayerChallenges: challenges.New(2, 1)})
	require.Error(t, err)
	_, err = Setup(SetupParams{Nodes: 512, Degree: 6, ExpansionDegree: 8, LayerChallenges: challenges.New(1, 1<<50)})
	require.Error(t, err)
	_, err = Setup(SetupParams{Nodes: 512, Degree: 6, ExpansionDegree: 8, LayerChallenges: challenges.New(2, 1<<63+100)})
	require.Error(t, err)
}

func TestRequirementsRejectWrappedCount(t *testing.T) {
	pp := &PublicParams{LayerChallenges: challenges.New(2, 1<<63+100)}
	require.False(t, SatisfiesRequirements(pp, challenges.Requirements{MinimumChallenges: 176}, 1))
}
