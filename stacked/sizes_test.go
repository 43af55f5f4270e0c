package stacked

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stacked-drg/porep-verifier/challenges"
	"github.com/stretchr/testify/require"
)

func TestPoRepKey(t *testing.T) {
	key := func(porepID [32]byte, size SupportedSize, v APIVersion) [32]byte {
		k, err := PoRepKey(porepID, size, v)
		require.NoError(t, err)
		return k
	}

	var zero [32]byte
	k := key(zero, SectorSize2KiB, V1_1_0)
	require.Equal(t, "53fa9028d8683c41a19cfc6e9c457cc7591e9baa15e668156d930e47d88ab956", hex.EncodeToString(k[:]))

	var threes [32]byte
	for i := range threes {
		threes[i] = 3
	}
	k = key(threes, SectorSize32GiB, V1_0_0)
	require.Equal(t, "7d42015ca6266fd3400a9c39208b1314aaa59e33b5cbe1fafe01f9a1a47c6c2c", hex.EncodeToString(k[:]))

	require.NotEqual(t, key(zero, SectorSize2KiB, V1_0_0), key(zero, SectorSize2KiB, V1_1_0))
	require.NotEqual(t, key(zero, SectorSize2KiB, V1_1_0), key(zero, SectorSize4KiB, V1_1_0))
}

func TestPoRepKeyRejectsUnknownVersion(t *testing.T) {
	_, err := PoRepKey([32]byte{}, SectorSize2KiB, APIVersion(2))
	require.Error(t, err)
	_, err = PoRepKey([32]byte{}, SectorSize2KiB, APIVersion(-1))
	require.Error(t, err)
	_, err = PoRepKey([32]byte{}, SupportedSize(len(SupportedSizes())), V1_1_0)
	require.Error(t, err)

	sp, err := SetupParamsFor(SectorSize2KiB, 1, [32]byte{}, APIVersion(7))
	require.NoError(t, err)
	_, err = KeyFor(sp)
	require.Error(t, err)
}

func TestKeyForSetupParams(t *testing.T) {
	sp, err := SetupParamsFor(SectorSize8MiB, 1, [32]byte{9}, V1_1_0)
	require.NoError(t, err)
	key, err := KeyFor(sp)
	require.NoError(t, err)
	want, err := PoRepKey([32]byte{9}, SectorSize8MiB, V1_1_0)
	require.NoError(t, err)
	require.Equal(t, want, key)

	sp.Nodes = 100
	_, err = KeyFor(sp)
	require.Error(t, err)
}

func TestSupportedSizes(t *testing.T) {
	require.Len(t, SupportedSizes(), 10)
	require.Equal(t, uint64(64), SectorSize2KiB.Nodes())
	require.Equal(t, abi.SectorSize(64<<30), SectorSize64GiB.Bytes())
	require.Equal(t, uint8(8), uint8(SectorSize32GiB))

	for _, s := range SupportedSizes() {
		parsed, err := ParseSupportedSize(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)

		parsed, err = ParseSupportedSize(s.Bytes().ShortString())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	parsed, err := ParseSupportedSize("2048")
	require.NoError(t, err)
	require.Equal(t, SectorSize2KiB, parsed)

	_, err = ParseSupportedSize("3KiB")
	require.Error(t, err)

	out, err := json.Marshal(SectorSize16MiB)
	require.NoError(t, err)
	require.Equal(t, `"sector_size16_mib"`, string(out))
}

func TestSetupParamsFor(t *testing.T) {
	sp, err := SetupParamsFor(SectorSize2KiB, 1, [32]byte{}, V1_1_0)
	require.NoError(t, err)
	require.Equal(t, uint64(64), sp.Nodes)
	require.Equal(t, uint64(DRGDegree), sp.Degree)
	require.Equal(t, uint64(EXPDegree), sp.ExpansionDegree)
	require.Equal(t, challenges.New(2, 1), sp.LayerChallenges)

	sp, err = SetupParamsFor(SectorSize32GiB, SectorSize32GiB.Partitions(), [32]byte{}, V1_1_0)
	require.NoError(t, err)
	require.Equal(t, challenges.New(11, 2), sp.LayerChallenges)
	require.True(t, challenges.Requirements{MinimumChallenges: 176}.Satisfied(sp.LayerChallenges, 10))

	def, err := SetupParamsFor(SectorSize32GiB, 0, [32]byte{}, V1_1_0)
	require.NoError(t, err)
	require.Equal(t, sp, def)
}

func TestSealProofMapping(t *testing.T) {
	id := PoRepIDFor(abi.RegisteredSealProof_StackedDrg2KiBV1_1)
	require.Equal(t, byte(abi.RegisteredSealProof_StackedDrg2KiBV1_1), id[0])
	for _, b := range id[1:] {
		require.Zero(t, b)
	}

	v, err := APIVersionFor(abi.RegisteredSealProof_StackedDrg32GiBV1)
	require.NoError(t, err)
	require.Equal(t, V1_0_0, v)

	sp, err := SetupParamsForProof(abi.RegisteredSealProof_StackedDrg8MiBV1_1, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(8<<20/32), sp.Nodes)
	require.Equal(t, V1_1_0, sp.APIVersion)
	require.Equal(t, PoRepIDFor(abi.RegisteredSealProof_StackedDrg8MiBV1_1), sp.PoRepID)
}
