package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/hashers"
	"github.com/stacked-drg/porep-verifier/types"
)

var fHasher string

var commitCmd = &cobra.Command{
	Use:   "commit [file]",
	Short: "computes the merkle commitment of a file over 32 byte leaves",
	Args:  cobra.ExactArgs(1),
	Run:   commit,
}

func commit(cmd *cobra.Command, args []string) {
	h, err := hashers.ByName(fHasher)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid hasher")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read file")
	}
	root, err := hashers.Commit(h, data)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to commit")
	}
	fmt.Println("root:", "0x"+root.String())

	c, err := types.CommDCID(root)
	if err == nil {
		fmt.Println("comm_d:", c.String())
	}
	c, err = types.CommRCID(root)
	if err == nil {
		fmt.Println("comm_r:", c.String())
	}
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVar(&fHasher, "hasher", "sha256", "hasher (sha256 or mimc)")
}
