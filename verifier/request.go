package verifier

import (
	"github.com/stacked-drg/porep-verifier/types"
	"golang.org/x/xerrors"
)

// RequestFromRaw converts a decoded verification query.
func RequestFromRaw(raw types.VerifyProofRaw) (VerifyRequest, error) {
	porepID, err := types.Bytes32("porep_id", raw.PoRepID)
	if err != nil {
		return VerifyRequest{}, decodeErr("request", err)
	}
	proverID, err := types.Bytes32("prover_id", raw.ProverID)
	if err != nil {
		return VerifyRequest{}, decodeErr("request", err)
	}
	ticket, err := types.Bytes32("ticket", raw.Ticket)
	if err != nil {
		return VerifyRequest{}, decodeErr("request", err)
	}
	if len(raw.ProofRaw) == 0 {
		return VerifyRequest{}, configErr("empty proof", xerrors.New("proof_raw is empty"))
	}
	return VerifyRequest{
		Proof:      raw.ProofRaw,
		Inputs:     types.DeserializePublicInputs(raw.PublicInputs),
		PoRepID:    porepID,
		SectorSize: raw.SectorSize,
		APIVersion: raw.APIVersion,
		ProverID:   proverID,
		SectorID:   raw.SectorID,
		Ticket:     ticket,
	}, nil
}
