// Package drg builds the stacked depth robust graph the replica layers are
// labeled over. Graphs are adjacency rules: parents are recomputed on demand
// from the node index and the graph seeds.
package drg

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"
	"golang.org/x/xerrors"
)

// APIVersion selects the proofs release a graph is compatible with.
type APIVersion int

const (
	V1_0_0 APIVersion = iota
	V1_1_0
)

func (v APIVersion) String() string {
	switch v {
	case V1_0_0:
		return "V1_0_0"
	case V1_1_0:
		return "V1_1_0"
	default:
		return "unknown"
	}
}

func ParseAPIVersion(s string) (APIVersion, error) {
	switch s {
	case "V1_0_0", "1.0.0":
		return V1_0_0, nil
	case "V1_1_0", "1.1.0":
		return V1_1_0, nil
	default:
		return 0, xerrors.Errorf("unknown api version %q", s)
	}
}

func (v APIVersion) Valid() bool {
	return v == V1_0_0 || v == V1_1_0
}

func (v APIVersion) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, xerrors.Errorf("unknown api version %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *APIVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseAPIVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

const (
	drSampleDST = "Filecoin_DRSample"
	feistelDST  = "Filecoin_Feistel"
)

// DeriveDomainSeed separates per-purpose seeds derived from one porep id.
func DeriveDomainSeed(tag string, porepID [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(tag))
	h.Write(porepID[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func DeriveDRGSeed(porepID [32]byte) [28]byte {
	raw := DeriveDomainSeed(drSampleDST, porepID)
	var seed [28]byte
	copy(seed[:], raw[:28])
	return seed
}

func DeriveFeistelKeys(porepID [32]byte) [4]uint64 {
	raw := DeriveDomainSeed(feistelDST, porepID)
	var keys [4]uint64
	for i := range keys {
		keys[i] = binary.LittleEndian.Uint64(raw[8*i:])
	}
	return keys
}
