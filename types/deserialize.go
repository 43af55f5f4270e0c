package types

import (
	"encoding/json"
	"io"
	"os"

	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stacked-drg/porep-verifier/stacked"
	"golang.org/x/xerrors"
)

func readJSON(path string, v interface{}) error {
	jsonFile, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("failed to open %s: %w", path, err)
	}
	defer jsonFile.Close()

	rawBytes, err := io.ReadAll(jsonFile)
	if err != nil {
		return xerrors.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(rawBytes, v); err != nil {
		return xerrors.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func ReadVerifierParameters(path string) (VerifierParametersRaw, error) {
	var raw VerifierParametersRaw
	err := readJSON(path, &raw)
	return raw, err
}

func ReadVerifierParametersFromRequest(data []byte) (VerifierParametersRaw, error) {
	var raw VerifierParametersRaw
	err := json.Unmarshal(data, &raw)
	return raw, err
}

func ReadPublicInputs(path string) (PublicInputsRaw, error) {
	var raw PublicInputsRaw
	err := readJSON(path, &raw)
	return raw, err
}

func ReadPublicInputsFromRequest(data []byte) (PublicInputsRaw, error) {
	var raw PublicInputsRaw
	err := json.Unmarshal(data, &raw)
	return raw, err
}

func ReadVerifyProof(path string) (VerifyProofRaw, error) {
	var raw VerifyProofRaw
	err := readJSON(path, &raw)
	return raw, err
}

func ReadSealInputs(path string) (SealInputsRaw, error) {
	var raw SealInputsRaw
	err := readJSON(path, &raw)
	return raw, err
}

func DeserializeSetupParams(raw SetupParamsRaw) stacked.SetupParams {
	return stacked.SetupParams{
		Nodes:           raw.Nodes,
		Degree:          raw.Degree,
		ExpansionDegree: raw.ExpansionDegree,
		PoRepID:         raw.PoRepID,
		LayerChallenges: raw.LayerChallenges,
		APIVersion:      raw.APIVersion,
	}
}

func SerializeSetupParams(sp stacked.SetupParams) SetupParamsRaw {
	return SetupParamsRaw{
		Nodes:           sp.Nodes,
		Degree:          sp.Degree,
		ExpansionDegree: sp.ExpansionDegree,
		PoRepID:         sp.PoRepID,
		LayerChallenges: sp.LayerChallenges,
		APIVersion:      sp.APIVersion,
	}
}

func DeserializeVerifierParameters(raw VerifierParametersRaw) (stacked.VerifierParams, error) {
	vp := stacked.VerifierParams{
		SetupParams:       DeserializeSetupParams(raw.SetupParams),
		VerifyingKey:      raw.VK,
		MinimumChallenges: raw.MinimumChallenges,
	}
	if err := vp.SetupParams.Validate(); err != nil {
		return vp, err
	}
	if len(vp.VerifyingKey) == 0 {
		return vp, xerrors.New("verifier parameters carry an empty verifying key")
	}
	return vp, nil
}

func SerializeVerifierParameters(vp stacked.VerifierParams) VerifierParametersRaw {
	return VerifierParametersRaw{
		SetupParams:       SerializeSetupParams(vp.SetupParams),
		VK:                vp.VerifyingKey,
		MinimumChallenges: vp.MinimumChallenges,
	}
}

// DeserializePublicInputs keeps the replica id and commitments as given.
// Non-canonical encodings surface when the inputs are assembled.
func DeserializePublicInputs(raw PublicInputsRaw) stacked.PublicInputs {
	inputs := stacked.PublicInputs{
		ReplicaID: domain.Element(raw.ReplicaID),
		Seed:      raw.Seed,
	}
	if raw.Tau != nil {
		inputs.Tau = &stacked.Tau{
			CommD: domain.Element(raw.Tau.CommD),
			CommR: domain.Element(raw.Tau.CommR),
		}
	}
	if raw.K != nil {
		k := *raw.K
		inputs.K = &k
	}
	return inputs
}

func SerializePublicInputs(inputs stacked.PublicInputs) PublicInputsRaw {
	raw := PublicInputsRaw{
		ReplicaID: inputs.ReplicaID,
		Seed:      inputs.Seed,
	}
	if inputs.Tau != nil {
		raw.Tau = &TauRaw{CommD: inputs.Tau.CommD, CommR: inputs.Tau.CommR}
	}
	if inputs.K != nil {
		k := *inputs.K
		raw.K = &k
	}
	return raw
}
