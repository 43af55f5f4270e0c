package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/types"
)

var fSealInputs string

var sealInputsCmd = &cobra.Command{
	Use:   "seal-inputs",
	Short: "rebuilds the public inputs of every partition of a sealed sector",
	Run:   sealInputs,
}

func sealInputs(cmd *cobra.Command, args []string) {
	raw, err := types.ReadSealInputs(fSealInputs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read seal inputs")
	}
	proof := abi.RegisteredSealProof(raw.RegisteredProof)
	sp, err := stacked.SetupParamsForProof(proof, fPartitions)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid registered proof")
	}
	commR, err := types.ParseCommR(raw.CommR)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid comm_r")
	}
	commD, err := types.ParseCommD(raw.CommD)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid comm_d")
	}
	proverID, err := types.Bytes32("prover_id", raw.ProverID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid prover id")
	}
	ticket, err := types.Bytes32("ticket", raw.Ticket)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ticket")
	}
	seed, err := types.Bytes32("seed", raw.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed")
	}

	start := time.Now()
	partitions, err := stacked.SealInputs(context.Background(), sp, fPartitions, commR, commD, proverID, abi.SectorNumber(raw.SectorID), ticket, seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate seal inputs")
	}
	elapsed := time.Since(start)
	log.Info().Msg("Successfully generated seal inputs, time: " + elapsed.String())

	out := make([][]string, len(partitions))
	for k, vector := range partitions {
		out[k] = make([]string, len(vector))
		for i, x := range vector {
			out[k][i] = domain.FromFr(x).String()
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func init() {
	rootCmd.AddCommand(sealInputsCmd)
	sealInputsCmd.Flags().StringVar(&fSealInputs, "file", "", "seal inputs JSON")
	sealInputsCmd.Flags().Uint64Var(&fPartitions, "partitions", 0, "number of partitions, 0 for the default of the sector size")
	sealInputsCmd.MarkFlagRequired("file")
}
