package verifier

import (
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stretchr/testify/require"
)

// inputsCircuit binds every public input through a weighted sum, so a proof
// only verifies against the exact vector it was produced for.
type inputsCircuit struct {
	Inputs []frontend.Variable `gnark:",public"`
	Sum    frontend.Variable
}

func (c *inputsCircuit) Define(api frontend.API) error {
	acc := frontend.Variable(0)
	for i, in := range c.Inputs {
		acc = api.Add(acc, api.Mul(in, i+1))
	}
	api.AssertIsEqual(acc, c.Sum)
	return nil
}

func assignment(inputs []fr.Element) *inputsCircuit {
	var sum fr.Element
	a := &inputsCircuit{Inputs: make([]frontend.Variable, len(inputs))}
	for i := range inputs {
		var w, term fr.Element
		w.SetUint64(uint64(i + 1))
		term.Mul(&inputs[i], &w)
		sum.Add(&sum, &term)
		a.Inputs[i] = inputs[i].BigInt(new(big.Int))
	}
	a.Sum = sum.BigInt(new(big.Int))
	return a
}

type fixture struct {
	params   stacked.VerifierParams
	key      [32]byte
	inputs   stacked.PublicInputs
	vector   []fr.Element
	porepID  [32]byte
	proverID [32]byte
	sectorID uint64
	ticket   [32]byte
	vkRaw    []byte
	proofRaw []byte
}

func (f *fixture) request() Request {
	return Request{
		Params:   f.params,
		Key:      f.key,
		Proof:    f.proofRaw,
		Inputs:   f.inputs,
		PoRepID:  f.porepID,
		ProverID: f.proverID,
		SectorID: f.sectorID,
		Ticket:   f.ticket,
	}
}

func (f *fixture) verifyRequest() VerifyRequest {
	return VerifyRequest{
		Proof:      f.proofRaw,
		Inputs:     f.inputs,
		PoRepID:    f.porepID,
		SectorSize: stacked.SectorSize2KiB,
		APIVersion: stacked.V1_1_0,
		ProverID:   f.proverID,
		SectorID:   f.sectorID,
		Ticket:     f.ticket,
	}
}

var (
	fixtureOnce sync.Once
	sharedFix   *fixture
	fixtureErr  error
)

// newFixture picks a sector whose replica id passes the provenance check,
// assembles the inputs of a 2KiB sector and proves them with a throwaway key.
// It is built once per test binary.
func newFixture(t *testing.T) *fixture {
	fixtureOnce.Do(func() {
		sharedFix, fixtureErr = buildFixture()
	})
	require.NoError(t, fixtureErr)
	return sharedFix
}

func buildFixture() (*fixture, error) {
	sp, err := stacked.SetupParamsForProof(abi.RegisteredSealProof_StackedDrg2KiBV1_1, 1)
	if err != nil {
		return nil, err
	}
	f := &fixture{
		params: stacked.VerifierParams{
			SetupParams:       sp,
			MinimumChallenges: stacked.SectorSize2KiB.MinimumChallenges(),
		},
		porepID:  sp.PoRepID,
		proverID: stacked.ProverIDFromAccount("alice"),
	}
	if f.key, err = stacked.PoRepKey(sp.PoRepID, stacked.SectorSize2KiB, stacked.V1_1_0); err != nil {
		return nil, err
	}
	for i := range f.ticket {
		f.ticket[i] = 1
	}
	commD := domain.FromUint64(0x0d)
	commR := domain.FromUint64(0x1f)

	for sector := uint64(1); ; sector++ {
		rid := stacked.GenerateReplicaID(f.proverID, sector, f.ticket, commD.Bytes(), f.porepID)
		if stacked.CheckReplicaID(f.proverID[:], sector, f.ticket[:], commD.Bytes(), f.porepID[:], rid) {
			f.sectorID = sector
			f.inputs.ReplicaID = rid
			break
		}
	}
	for i := range f.inputs.Seed {
		f.inputs.Seed[i] = byte(i)
	}
	f.inputs.Tau = &stacked.Tau{CommD: commD, CommR: commR}

	pp, err := stacked.Setup(sp)
	if err != nil {
		return nil, err
	}
	f.vector, err = stacked.GeneratePublicInputs(f.inputs, pp, nil)
	if err != nil {
		return nil, err
	}

	circuit := inputsCircuit{Inputs: make([]frontend.Variable, len(f.vector))}
	ccs, err := frontend.Compile(ecc.BLS12_381.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	w, err := frontend.NewWitness(assignment(f.vector), ecc.BLS12_381.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, err
	}

	if f.vkRaw, err = Marshal(vk); err != nil {
		return nil, err
	}
	if f.proofRaw, err = Marshal(proof); err != nil {
		return nil, err
	}
	f.params.VerifyingKey = f.vkRaw
	return f, nil
}

type countingSNARK struct {
	mu      sync.Mutex
	calls   int
	verdict bool
	err     error
}

func (c *countingSNARK) Verify(VerifyingKey, []byte, []fr.Element) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.verdict, c.err
}
