package stacked

import (
	"bytes"
	"encoding/binary"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/minio/sha256-simd"
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/xerrors"
)

func replicaDigest(proverID []byte, sectorID uint64, ticket []byte, commD []byte, porepSeed []byte) [32]byte {
	h := sha256.New()
	h.Write(proverID)
	var sector [8]byte
	binary.BigEndian.PutUint64(sector[:], sectorID)
	h.Write(sector[:])
	h.Write(ticket)
	h.Write(commD)
	h.Write(porepSeed)
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// GenerateReplicaID binds a replica to the prover, sector, ticket, data
// commitment and porep id. The digest is read little-endian and reduced
// modulo the field order.
func GenerateReplicaID(proverID [32]byte, sectorID uint64, ticket [32]byte, commD []byte, porepSeed [32]byte) domain.Element {
	digest := replicaDigest(proverID[:], sectorID, ticket[:], commD, porepSeed[:])
	return domain.FromLEBytesModOrder(digest[:])
}

// CheckReplicaID recomputes the digest, clears its two top bits and compares
// it byte for byte with the little-endian encoding of candidate.
//
// This canonicalization differs from GenerateReplicaID: the two agree
// whenever the digest is already below 2^254.
func CheckReplicaID(proverID []byte, sectorID uint64, ticket []byte, commD []byte, porepSeed []byte, candidate domain.Element) bool {
	digest := replicaDigest(proverID, sectorID, ticket, commD, porepSeed)
	digest[31] &= 0x3f
	return bytes.Equal(digest[:], candidate[:])
}

// ProverIDFromAddress left aligns the address payload in 32 bytes, the
// way miner actor ids are turned into prover ids.
func ProverIDFromAddress(addr address.Address) ([32]byte, error) {
	var id [32]byte
	payload := addr.Payload()
	if len(payload) > len(id) {
		return id, xerrors.Errorf("address payload of %d bytes does not fit a prover id", len(payload))
	}
	copy(id[:], payload)
	return id, nil
}

func ProverIDFromActor(actor abi.ActorID) ([32]byte, error) {
	addr, err := address.NewIDAddress(uint64(actor))
	if err != nil {
		return [32]byte{}, xerrors.Errorf("failed to create id address: %w", err)
	}
	return ProverIDFromAddress(addr)
}

// ProverIDFromAccount is the prover id ledger submissions are bound to:
// sha256 of the submitting account.
func ProverIDFromAccount(account string) [32]byte {
	return sha256.Sum256([]byte(account))
}
