package cmd

import (
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/types"
	"golang.org/x/xerrors"
)

var (
	fProverID  string
	fMiner     string
	fActor     int64
	fAccount   string
	fSectorID  uint64
	fTicket    string
	fCommD     string
	fPoRepID   string
	fCandidate string
)

var replicaCmd = &cobra.Command{
	Use:   "replica-id",
	Short: "generates a replica id, or checks a candidate against its provenance",
	Run:   replicaID,
}

func proverID() ([32]byte, error) {
	switch {
	case fProverID != "":
		return parseHex32("prover-id", fProverID)
	case fMiner != "":
		addr, err := address.NewFromString(fMiner)
		if err != nil {
			return [32]byte{}, xerrors.Errorf("miner: %w", err)
		}
		return stacked.ProverIDFromAddress(addr)
	case fActor >= 0:
		return stacked.ProverIDFromActor(abi.ActorID(fActor))
	case fAccount != "":
		return stacked.ProverIDFromAccount(fAccount), nil
	default:
		return [32]byte{}, xerrors.New("one of --prover-id, --miner, --actor or --account is required")
	}
}

func replicaID(cmd *cobra.Command, args []string) {
	prover, err := proverID()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid prover")
	}
	ticket, err := parseHex32("ticket", fTicket)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ticket")
	}
	commD, err := types.ParseCommD(fCommD)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid comm_d")
	}
	porepID, err := resolvePoRepID(fPoRepID, fRegisteredProof)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid porep id")
	}

	rid := stacked.GenerateReplicaID(prover, fSectorID, ticket, commD[:], porepID)
	fmt.Println("0x" + rid.String())

	if fCandidate != "" {
		candidate, err := parseHex32("candidate", fCandidate)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid candidate")
		}
		ok := stacked.CheckReplicaID(prover[:], fSectorID, ticket[:], commD[:], porepID[:], candidate)
		fmt.Println("check:", ok)
	}
}

func init() {
	rootCmd.AddCommand(replicaCmd)
	replicaCmd.Flags().StringVar(&fProverID, "prover-id", "", "32 byte hex prover id")
	replicaCmd.Flags().StringVar(&fMiner, "miner", "", "miner ID address the prover id is derived from")
	replicaCmd.Flags().Int64Var(&fActor, "actor", -1, "miner actor id the prover id is derived from")
	replicaCmd.Flags().StringVar(&fAccount, "account", "", "ledger account the prover id is derived from")
	replicaCmd.Flags().Uint64Var(&fSectorID, "sector", 0, "sector number")
	replicaCmd.Flags().StringVar(&fTicket, "ticket", "", "32 byte hex ticket")
	replicaCmd.Flags().StringVar(&fCommD, "comm-d", "", "unsealed CID or 32 byte hex comm_d")
	replicaCmd.Flags().StringVar(&fPoRepID, "porep-id", "", "32 byte hex porep id, defaults to the id of --registered-proof")
	replicaCmd.Flags().Int64Var(&fRegisteredProof, "registered-proof", int64(abi.RegisteredSealProof_StackedDrg2KiBV1_1), "registered seal proof")
	replicaCmd.Flags().StringVar(&fCandidate, "check", "", "candidate replica id to check, 32 byte hex little-endian")
	replicaCmd.MarkFlagRequired("ticket")
	replicaCmd.MarkFlagRequired("comm-d")
}
