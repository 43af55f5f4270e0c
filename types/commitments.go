package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	commcid "github.com/filecoin-project/go-fil-commcid"
	"github.com/ipfs/go-cid"
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/xerrors"
)

// ParseCommD accepts an unsealed CID or 32 hex encoded bytes.
func ParseCommD(s string) ([32]byte, error) {
	return parseCommitment(s, commcid.CIDToDataCommitmentV1)
}

// ParseCommR accepts a sealed CID or 32 hex encoded bytes.
func ParseCommR(s string) ([32]byte, error) {
	return parseCommitment(s, commcid.CIDToReplicaCommitmentV1)
}

func parseCommitment(s string, fromCID func(cid.Cid) ([]byte, error)) ([32]byte, error) {
	var out [32]byte
	var raw []byte
	if strings.HasPrefix(s, "0x") {
		b, err := hexutil.Decode(s)
		if err != nil {
			return out, xerrors.Errorf("failed to decode commitment: %w", err)
		}
		raw = b
	} else {
		c, err := cid.Decode(s)
		if err != nil {
			return out, xerrors.Errorf("failed to decode commitment cid: %w", err)
		}
		b, err := fromCID(c)
		if err != nil {
			return out, xerrors.Errorf("failed to read commitment cid: %w", err)
		}
		raw = b
	}
	if len(raw) != len(out) {
		return out, xerrors.Errorf("commitment has %d bytes, expected %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}

func CommDCID(e domain.Element) (cid.Cid, error) {
	return commcid.DataCommitmentV1ToCID(e[:])
}

func CommRCID(e domain.Element) (cid.Cid, error) {
	return commcid.ReplicaCommitmentV1ToCID(e[:])
}

// Bytes32 requires an exactly 32 byte blob.
func Bytes32(name string, b []byte) ([32]byte, error) {
	var out [32]byte
	if len(b) != len(out) {
		return out, xerrors.Errorf("%s has %d bytes, expected %d", name, len(b), len(out))
	}
	copy(out[:], b)
	return out, nil
}
