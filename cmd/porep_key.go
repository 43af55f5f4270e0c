package cmd

import (
	"fmt"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/stacked"
)

var (
	fSize       string
	fAPIVersion string
)

var porepKeyCmd = &cobra.Command{
	Use:   "porep-key",
	Short: "prints the key verifier params are registered under",
	Run:   porepKey,
}

func resolveKey() ([32]byte, error) {
	porepID, err := resolvePoRepID(fPoRepID, fRegisteredProof)
	if err != nil {
		return [32]byte{}, err
	}
	size, err := stacked.ParseSupportedSize(fSize)
	if err != nil {
		return [32]byte{}, err
	}
	v, err := stacked.ParseAPIVersion(fAPIVersion)
	if err != nil {
		return [32]byte{}, err
	}
	return stacked.PoRepKey(porepID, size, v)
}

func porepKey(cmd *cobra.Command, args []string) {
	key, err := resolveKey()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid porep key parameters")
	}
	fmt.Printf("0x%x\n", key)
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fPoRepID, "porep-id", "", "32 byte hex porep id, defaults to the id of --registered-proof")
	cmd.Flags().Int64Var(&fRegisteredProof, "registered-proof", int64(abi.RegisteredSealProof_StackedDrg2KiBV1_1), "registered seal proof")
	cmd.Flags().StringVar(&fSize, "size", "2KiB", "sector size")
	cmd.Flags().StringVar(&fAPIVersion, "api-version", "V1_1_0", "api version (V1_0_0 or V1_1_0)")
}

func init() {
	rootCmd.AddCommand(porepKeyCmd)
	addKeyFlags(porepKeyCmd)
}
