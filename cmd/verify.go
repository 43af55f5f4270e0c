package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/types"
	"github.com/stacked-drg/porep-verifier/verifier"
)

var (
	fRequest string
	fParams  string
	fProof   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "verifies a proof of replication against registered or given verifier params",
	Run:   verify,
}

type verifyResult struct {
	Verified bool   `json:"verified"`
	State    string `json:"state"`
	Inputs   int    `json:"inputs"`
}

func verify(cmd *cobra.Command, args []string) {
	raw, err := types.ReadVerifyProof(fRequest)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read request")
	}
	if fProof != "" {
		proofRaw, _, err := verifier.LoadProof(fProof)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load proof")
		}
		raw.ProofRaw = proofRaw
	}
	req, err := verifier.RequestFromRaw(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid request")
	}

	ctx := context.Background()
	start := time.Now()
	var out verifier.Outcome
	if fParams != "" {
		out, err = verifyOffline(ctx, req)
	} else {
		var n *node
		n, err = openNode()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open datastore")
		}
		defer n.Close()
		out, err = n.service.VerifyProof(ctx, req)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("verification failed")
	}
	elapsed := time.Since(start)
	log.Info().Msg("Successfully verified proof, time: " + elapsed.String())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(verifyResult{Verified: out.Verdict(), State: out.State.String(), Inputs: out.Inputs})
}

// verifyOffline checks the request against a bundle file without touching
// the datastore.
func verifyOffline(ctx context.Context, req verifier.VerifyRequest) (verifier.Outcome, error) {
	bundle, err := types.ReadVerifierParameters(fParams)
	if err != nil {
		return verifier.Outcome{}, err
	}
	vp, err := types.DeserializeVerifierParameters(bundle)
	if err != nil {
		return verifier.Outcome{}, err
	}
	key, err := req.Key()
	if err != nil {
		return verifier.Outcome{}, err
	}
	orch := verifier.NewOrchestrator(verifier.NewGroth16(nil))
	return orch.Verify(ctx, verifier.Request{
		Params:   vp,
		Key:      key,
		Proof:    req.Proof,
		Inputs:   req.Inputs,
		PoRepID:  req.PoRepID,
		ProverID: req.ProverID,
		SectorID: req.SectorID,
		Ticket:   req.Ticket,
	})
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&fRequest, "request", "", "verification request JSON")
	verifyCmd.Flags().StringVar(&fParams, "params", "", "verifier params bundle JSON, skips the datastore when set")
	verifyCmd.Flags().StringVar(&fProof, "proof", "", "binary proof file overriding proof_raw")
	verifyCmd.MarkFlagRequired("request")
}
