package cmd

import (
	"encoding/json"
	"os"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/domain"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/types"
)

var (
	fInputs          string
	fRegisteredProof int64
	fPartitions      uint64
	fPartition       uint64
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "derives the challenges of a partition and the parents of every challenged node",
	Run:   derive,
}

type challengeInfo struct {
	Node             uint64   `json:"node"`
	BaseParents      []uint64 `json:"base_parents"`
	ExpansionParents []uint64 `json:"expansion_parents"`
}

type deriveResult struct {
	Partition    uint64          `json:"partition"`
	Challenges   []challengeInfo `json:"challenges"`
	PublicInputs []string        `json:"public_inputs,omitempty"`
}

func derive(cmd *cobra.Command, args []string) {
	raw, err := types.ReadPublicInputs(fInputs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read public inputs")
	}
	inputs := types.DeserializePublicInputs(raw)

	sp, err := stacked.SetupParamsForProof(abi.RegisteredSealProof(fRegisteredProof), fPartitions)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid registered proof")
	}
	pp, err := stacked.Setup(sp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up public params")
	}

	challenged, err := inputs.Challenges(pp.LayerChallenges, pp.Graph.Size(), fPartition)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to derive challenges")
	}
	res := deriveResult{Partition: fPartition}
	for _, c := range challenged {
		base, err := pp.Graph.BaseParents(c)
		if err != nil {
			log.Fatal().Err(err).Uint64("node", c).Msg("failed to compute parents")
		}
		exp, err := pp.Graph.ExpansionParents(c)
		if err != nil {
			log.Fatal().Err(err).Uint64("node", c).Msg("failed to compute parents")
		}
		res.Challenges = append(res.Challenges, challengeInfo{Node: c, BaseParents: base, ExpansionParents: exp})
	}

	if inputs.Tau != nil {
		vector, err := stacked.GeneratePublicInputs(inputs, pp, &fPartition)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to assemble public inputs")
		}
		for _, x := range vector {
			res.PublicInputs = append(res.PublicInputs, domain.FromFr(x).String())
		}
	}

	log.Debug().Int("challenges", len(challenged)).Uint64("nodes", pp.Graph.Size()).Msg("derived partition")
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}

func init() {
	rootCmd.AddCommand(deriveCmd)
	deriveCmd.Flags().StringVar(&fInputs, "inputs", "", "public inputs JSON")
	deriveCmd.Flags().Int64Var(&fRegisteredProof, "registered-proof", int64(abi.RegisteredSealProof_StackedDrg2KiBV1_1), "registered seal proof the sector was sealed with")
	deriveCmd.Flags().Uint64Var(&fPartitions, "partitions", 1, "number of partitions the proof is split into, 0 for the default of the sector size")
	deriveCmd.Flags().Uint64Var(&fPartition, "k", 0, "partition index")
	deriveCmd.MarkFlagRequired("inputs")
}
