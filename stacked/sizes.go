package stacked

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/minio/sha256-simd"
	"github.com/stacked-drg/porep-verifier/challenges"
	"golang.org/x/xerrors"
)

// SupportedSize enumerates the sector sizes parameters can be registered for.
// The value is the byte mixed into the porep key.
type SupportedSize uint8

const (
	SectorSize2KiB SupportedSize = iota
	SectorSize4KiB
	SectorSize16KiB
	SectorSize32KiB
	SectorSize8MiB
	SectorSize16MiB
	SectorSize512MiB
	SectorSize1GiB
	SectorSize32GiB
	SectorSize64GiB
)

type sizeInfo struct {
	name              string
	bytes             abi.SectorSize
	minimumChallenges uint64
	layers            uint64
	partitions        uint64
}

var sizeTable = []sizeInfo{
	SectorSize2KiB:   {"sector_size2_kib", 2 << 10, 2, 2, 1},
	SectorSize4KiB:   {"sector_size4_kib", 4 << 10, 2, 2, 1},
	SectorSize16KiB:  {"sector_size16_kib", 16 << 10, 2, 2, 1},
	SectorSize32KiB:  {"sector_size32_kib", 32 << 10, 2, 2, 1},
	SectorSize8MiB:   {"sector_size8_mib", 8 << 20, 2, 2, 1},
	SectorSize16MiB:  {"sector_size16_mib", 16 << 20, 2, 2, 1},
	SectorSize512MiB: {"sector_size512_mib", 512 << 20, 2, 2, 1},
	SectorSize1GiB:   {"sector_size1_gib", 1 << 30, 2, 2, 1},
	SectorSize32GiB:  {"sector_size32_gib", 32 << 30, 176, 11, 10},
	SectorSize64GiB:  {"sector_size64_gib", 64 << 30, 176, 11, 10},
}

func SupportedSizes() []SupportedSize {
	out := make([]SupportedSize, len(sizeTable))
	for i := range sizeTable {
		out[i] = SupportedSize(i)
	}
	return out
}

func (s SupportedSize) Valid() bool {
	return int(s) < len(sizeTable)
}

func (s SupportedSize) info() sizeInfo {
	if !s.Valid() {
		panic("unsupported sector size " + strconv.Itoa(int(s)))
	}
	return sizeTable[s]
}

func (s SupportedSize) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return s.info().name
}

func (s SupportedSize) Bytes() abi.SectorSize     { return s.info().bytes }
func (s SupportedSize) Nodes() uint64             { return uint64(s.info().bytes) / NodeSize }
func (s SupportedSize) MinimumChallenges() uint64 { return s.info().minimumChallenges }
func (s SupportedSize) Layers() uint64            { return s.info().layers }
func (s SupportedSize) Partitions() uint64        { return s.info().partitions }

// SupportedSizeOf maps a byte size onto the table.
func SupportedSizeOf(size abi.SectorSize) (SupportedSize, error) {
	for i, info := range sizeTable {
		if info.bytes == size {
			return SupportedSize(i), nil
		}
	}
	return 0, xerrors.Errorf("unsupported sector size %d", uint64(size))
}

// ParseSupportedSize accepts the wire name, a short form such as "2KiB" or
// a byte count.
func ParseSupportedSize(s string) (SupportedSize, error) {
	for i, info := range sizeTable {
		if s == info.name || strings.EqualFold(s, info.bytes.ShortString()) {
			return SupportedSize(i), nil
		}
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return SupportedSizeOf(abi.SectorSize(n))
	}
	return 0, xerrors.Errorf("unknown sector size %q", s)
}

func (s SupportedSize) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, xerrors.Errorf("unsupported sector size %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *SupportedSize) UnmarshalText(text []byte) error {
	parsed, err := ParseSupportedSize(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PoRepKey indexes stored verifier parameters:
// sha256(porep_id || size byte || api version byte).
func PoRepKey(porepID [32]byte, size SupportedSize, v APIVersion) ([32]byte, error) {
	if !size.Valid() {
		return [32]byte{}, xerrors.Errorf("unsupported sector size %d", int(size))
	}
	var version byte
	switch v {
	case V1_0_0:
		version = 0
	case V1_1_0:
		version = 1
	default:
		return [32]byte{}, xerrors.Errorf("unknown api version %d", int(v))
	}
	h := sha256.New()
	h.Write(porepID[:])
	h.Write([]byte{byte(size), version})
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key, nil
}

// KeyFor derives the porep key of a parameter set from its node count.
func KeyFor(sp SetupParams) ([32]byte, error) {
	size, err := SupportedSizeOf(abi.SectorSize(sp.SectorBytes()))
	if err != nil {
		return [32]byte{}, err
	}
	return PoRepKey(sp.PoRepID, size, sp.APIVersion)
}

// SetupParamsFor builds the parameters a sealer of the given size uses when
// proving with the given number of partitions. Zero partitions selects the
// default partition count of the size.
func SetupParamsFor(size SupportedSize, partitions uint64, porepID [32]byte, v APIVersion) (SetupParams, error) {
	if !size.Valid() {
		return SetupParams{}, xerrors.Errorf("unsupported sector size %d", int(size))
	}
	if partitions == 0 {
		partitions = size.Partitions()
	}
	sectorBytes := uint64(size.Bytes())
	if sectorBytes%NodeSize != 0 {
		return SetupParams{}, xerrors.Errorf("sector_bytes (%d) must be a multiple of %d", sectorBytes, NodeSize)
	}
	return SetupParams{
		Nodes:           sectorBytes / NodeSize,
		Degree:          DRGDegree,
		ExpansionDegree: EXPDegree,
		PoRepID:         porepID,
		LayerChallenges: challenges.Select(partitions, size.MinimumChallenges(), size.Layers()),
		APIVersion:      v,
	}, nil
}

// PoRepIDFor is the porep id a registered seal proof seals with: the proof
// number little-endian in the first eight bytes, zero nonce.
func PoRepIDFor(proof abi.RegisteredSealProof) [32]byte {
	var id [32]byte
	binary.LittleEndian.PutUint64(id[:8], uint64(proof))
	return id
}

func APIVersionFor(proof abi.RegisteredSealProof) (APIVersion, error) {
	switch proof {
	case abi.RegisteredSealProof_StackedDrg2KiBV1,
		abi.RegisteredSealProof_StackedDrg8MiBV1,
		abi.RegisteredSealProof_StackedDrg512MiBV1,
		abi.RegisteredSealProof_StackedDrg32GiBV1,
		abi.RegisteredSealProof_StackedDrg64GiBV1:
		return V1_0_0, nil
	case abi.RegisteredSealProof_StackedDrg2KiBV1_1,
		abi.RegisteredSealProof_StackedDrg8MiBV1_1,
		abi.RegisteredSealProof_StackedDrg512MiBV1_1,
		abi.RegisteredSealProof_StackedDrg32GiBV1_1,
		abi.RegisteredSealProof_StackedDrg64GiBV1_1:
		return V1_1_0, nil
	default:
		return 0, xerrors.Errorf("unsupported seal proof %d", proof)
	}
}

// SetupParamsForProof resolves size, porep id and api version of a
// registered seal proof.
func SetupParamsForProof(proof abi.RegisteredSealProof, partitions uint64) (SetupParams, error) {
	v, err := APIVersionFor(proof)
	if err != nil {
		return SetupParams{}, err
	}
	ssize, err := proof.SectorSize()
	if err != nil {
		return SetupParams{}, xerrors.Errorf("failed to get sector size: %w", err)
	}
	size, err := SupportedSizeOf(ssize)
	if err != nil {
		return SetupParams{}, err
	}
	return SetupParamsFor(size, partitions, PoRepIDFor(proof), v)
}
