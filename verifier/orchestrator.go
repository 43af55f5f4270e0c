package verifier

import (
	"context"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stacked-drg/porep-verifier/stacked"
	"golang.org/x/xerrors"
)

// State is the last stage a verification call reached.
type State int

const (
	Start State = iota
	IdentityChecked
	RequirementsChecked
	InputsAssembled
	Verified
	Rejected
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case IdentityChecked:
		return "identity-checked"
	case RequirementsChecked:
		return "requirements-checked"
	case InputsAssembled:
		return "inputs-assembled"
	case Verified:
		return "verified"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Outcome struct {
	State State
	// Inputs is the length of the vector handed to the SNARK.
	Inputs int
}

func (o Outcome) Verdict() bool {
	return o.State == Verified
}

// Request is one proof to check against a registered parameter bundle.
type Request struct {
	Params   stacked.VerifierParams
	Key      [32]byte
	Proof    []byte
	Inputs   stacked.PublicInputs
	PoRepID  [32]byte
	ProverID [32]byte
	SectorID uint64
	Ticket   [32]byte
}

// Orchestrator checks replica provenance, rebuilds the public inputs of
// partition 0 and hands them to the SNARK.
type Orchestrator struct {
	snark SNARK
}

func NewOrchestrator(snark SNARK) *Orchestrator {
	return &Orchestrator{snark: snark}
}

func (o *Orchestrator) Verify(ctx context.Context, req Request) (Outcome, error) {
	log := logger.Logger()
	out := Outcome{State: Start}

	tau := req.Inputs.Tau
	if tau == nil {
		return out, configErr("public inputs", stacked.ErrMissingCommitment)
	}
	if tau.CommD.IsZero() {
		return out, configErr("comm_d", stacked.ErrZeroCommitment)
	}
	if tau.CommR.IsZero() {
		return out, configErr("comm_r", stacked.ErrZeroCommitment)
	}
	if len(req.Proof) == 0 {
		return out, configErr("empty proof", nil)
	}

	if !stacked.CheckReplicaID(req.ProverID[:], req.SectorID, req.Ticket[:], tau.CommD.Bytes(), req.PoRepID[:], req.Inputs.ReplicaID) {
		log.Debug().Uint64("sector", req.SectorID).Msg("replica id does not match its claimed provenance")
		out.State = Rejected
		return out, nil
	}
	out.State = IdentityChecked

	start := time.Now()
	pp, err := stacked.Setup(req.Params.SetupParams)
	if err != nil {
		return out, configErr("setup params", err)
	}
	if !stacked.SatisfiesRequirements(pp, req.Params.Requirements(), 1) {
		return out, configErr("challenge requirements", xerrors.Errorf("%d challenges per partition, %d required",
			pp.LayerChallenges.ChallengesCount(), req.Params.MinimumChallenges))
	}
	out.State = RequirementsChecked

	var k uint64
	inputs, err := stacked.GeneratePublicInputs(req.Inputs, pp, &k)
	if err != nil {
		if xerrors.Is(err, domain.ErrNonCanonical) {
			return out, decodeErr("public inputs", err)
		}
		return out, xerrors.Errorf("failed to assemble public inputs: %w", err)
	}
	out.State = InputsAssembled
	out.Inputs = len(inputs)
	log.Debug().Msg("Successfully assembled public inputs, time: " + time.Since(start).String())

	if err := ctx.Err(); err != nil {
		return out, err
	}

	start = time.Now()
	ok, err := o.snark.Verify(VerifyingKey{Key: req.Key, Raw: req.Params.VerifyingKey}, req.Proof, inputs)
	if err != nil {
		return out, err
	}
	log.Debug().Msg("Successfully ran pairing check, time: " + time.Since(start).String())
	if ok {
		out.State = Verified
	} else {
		out.State = Rejected
	}
	return out, nil
}
