package verifier

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/logger"
	"golang.org/x/xerrors"
)

// VerifyingKey is a serialized Groth16 verifying key together with the
// porep key it is registered under.
type VerifyingKey struct {
	Key [32]byte
	Raw []byte
}

// SNARK checks a proof against a verifying key and a public input vector.
// A false verdict is not an error.
type SNARK interface {
	Verify(vk VerifyingKey, proof []byte, inputs []fr.Element) (bool, error)
}

// ParseVerifyingKey decodes a BLS12-381 Groth16 verifying key. The whole
// blob must be consumed.
func ParseVerifyingKey(raw []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BLS12_381)
	n, err := vk.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeErr("verifying key", err)
	}
	if n != int64(len(raw)) {
		return nil, decodeErr("verifying key", xerrors.Errorf("%d trailing bytes", int64(len(raw))-n))
	}
	return vk, nil
}

// ParseProof decodes a BLS12-381 Groth16 proof. The whole blob must be
// consumed.
func ParseProof(raw []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BLS12_381)
	n, err := proof.ReadFrom(bytes.NewReader(raw))
	if err != nil {
		return nil, decodeErr("proof", err)
	}
	if n != int64(len(raw)) {
		return nil, decodeErr("proof", xerrors.Errorf("%d trailing bytes", int64(len(raw))-n))
	}
	return proof, nil
}

// PublicWitness wraps an assembled input vector as a gnark public witness.
func PublicWitness(inputs []fr.Element) (witness.Witness, error) {
	w, err := witness.New(ecc.BLS12_381.ScalarField())
	if err != nil {
		return nil, err
	}
	values := make(chan any, len(inputs))
	for _, x := range inputs {
		values <- x
	}
	close(values)
	if err := w.Fill(len(inputs), 0, values); err != nil {
		return nil, xerrors.Errorf("failed to fill public witness: %w", err)
	}
	return w, nil
}

// Groth16 is the gnark backed SNARK. Parsed verifying keys are memoized in
// an optional KeyCache.
type Groth16 struct {
	cache *KeyCache
}

func NewGroth16(cache *KeyCache) *Groth16 {
	return &Groth16{cache: cache}
}

func (g *Groth16) verifyingKey(vk VerifyingKey) (groth16.VerifyingKey, error) {
	if g.cache == nil {
		return ParseVerifyingKey(vk.Raw)
	}
	return g.cache.Get(vk)
}

func (g *Groth16) Verify(vk VerifyingKey, proofRaw []byte, inputs []fr.Element) (bool, error) {
	log := logger.Logger()
	if len(proofRaw) == 0 {
		return false, configErr("empty proof", nil)
	}

	key, err := g.verifyingKey(vk)
	if err != nil {
		return false, err
	}
	if key.NbPublicWitness() != len(inputs) {
		return false, configErr("public input count", xerrors.Errorf("verifying key expects %d inputs, got %d", key.NbPublicWitness(), len(inputs)))
	}

	proof, err := ParseProof(proofRaw)
	if err != nil {
		return false, err
	}

	w, err := PublicWitness(inputs)
	if err != nil {
		return false, err
	}

	if err := groth16.Verify(proof, key, w); err != nil {
		log.Debug().Err(err).Msg("pairing check failed")
		return false, nil
	}
	return true, nil
}
