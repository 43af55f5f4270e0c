package types

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stacked-drg/porep-verifier/challenges"
	"github.com/stacked-drg/porep-verifier/stacked"
)

// Fixed size byte fields are encoded as JSON arrays of numbers, variable
// length blobs as 0x prefixed hex.

type SetupParamsRaw struct {
	Nodes           uint64                     `json:"nodes"`
	Degree          uint64                     `json:"degree"`
	ExpansionDegree uint64                     `json:"expansion_degree"`
	PoRepID         [32]byte                   `json:"porep_id"`
	LayerChallenges challenges.LayerChallenges `json:"layer_challenges"`
	APIVersion      stacked.APIVersion         `json:"api_version"`
}

type VerifierParametersRaw struct {
	SetupParams       SetupParamsRaw `json:"setup_params"`
	VK                hexutil.Bytes  `json:"vk"`
	MinimumChallenges uint64         `json:"minimum_challenges"`
}

type TauRaw struct {
	CommD [32]byte `json:"comm_d"`
	CommR [32]byte `json:"comm_r"`
}

type PublicInputsRaw struct {
	ReplicaID [32]byte `json:"replica_id"`
	Seed      [32]byte `json:"seed"`
	Tau       *TauRaw  `json:"tau"`
	K         *uint64  `json:"k"`
}

// VerifyProofRaw is a verification query against registered parameters.
type VerifyProofRaw struct {
	ProofRaw     hexutil.Bytes         `json:"proof_raw"`
	PublicInputs PublicInputsRaw       `json:"public_inputs"`
	PoRepID      hexutil.Bytes         `json:"porep_id"`
	SectorSize   stacked.SupportedSize `json:"sector_size"`
	APIVersion   stacked.APIVersion    `json:"api_version"`
	ProverID     hexutil.Bytes         `json:"prover_id"`
	SectorID     uint64                `json:"sector_id"`
	Ticket       hexutil.Bytes         `json:"ticket"`
}

// SubmitProofRaw is a VerifyProofRaw submitted on behalf of User for the
// current round.
type SubmitProofRaw struct {
	User string `json:"user"`
	VerifyProofRaw
}

type SetVerifierParamsRaw struct {
	SectorSize stacked.SupportedSize `json:"sector_size"`
	Params     VerifierParametersRaw `json:"params"`
	// Duration of the round opened with these parameters, in seconds.
	Duration uint64 `json:"duration"`
}

// SealInputsRaw describes a sealed sector by its registered proof and raw
// commitments. Commitments may be CIDs or hex.
type SealInputsRaw struct {
	RegisteredProof int64         `json:"registered_proof"`
	CommR           string        `json:"comm_r"`
	CommD           string        `json:"comm_d"`
	ProverID        hexutil.Bytes `json:"prover_id"`
	SectorID        uint64        `json:"sector_id"`
	Ticket          hexutil.Bytes `json:"ticket"`
	Seed            hexutil.Bytes `json:"seed"`
}
