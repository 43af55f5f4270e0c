package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/types"
)

var (
	fBundle   string
	fDuration time.Duration
	fKey      string
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "manages the verifier params registry",
}

var paramsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "registers a verifier params bundle and opens a round for it",
	Run:   paramsSet,
}

var paramsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "prints the bundle registered under a porep key",
	Run:   paramsGet,
}

var paramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "lists registered porep keys",
	Run:   paramsList,
}

func paramsSet(cmd *cobra.Command, args []string) {
	raw, err := types.ReadVerifierParameters(fBundle)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read bundle")
	}
	vp, err := types.DeserializeVerifierParameters(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid bundle")
	}
	size, err := stacked.ParseSupportedSize(fSize)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sector size")
	}

	n, err := openNode()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open datastore")
	}
	defer n.Close()

	round, err := n.service.SetParams(context.Background(), size, vp, fDuration)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register params")
	}
	key, err := vp.Key()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid porep key")
	}
	fmt.Printf("registered 0x%x, round %d open until %s\n", key, round.Number, time.Unix(round.Expires, 0).UTC().Format(time.RFC3339))
}

func paramsGet(cmd *cobra.Command, args []string) {
	var key [32]byte
	var err error
	if fKey != "" {
		key, err = parseHex32("key", fKey)
	} else {
		key, err = resolveKey()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("invalid porep key")
	}

	n, err := openNode()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open datastore")
	}
	defer n.Close()

	vp, err := n.service.Params(context.Background(), key)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get params")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(types.SerializeVerifierParameters(vp))
}

func paramsList(cmd *cobra.Command, args []string) {
	n, err := openNode()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open datastore")
	}
	defer n.Close()

	ctx := context.Background()
	keys, err := n.params.Keys(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list params")
	}
	for _, k := range keys {
		vp, err := n.params.Get(ctx, k)
		if err != nil {
			log.Fatal().Err(err).Hex("porep_key", k[:]).Msg("failed to read params")
		}
		fmt.Println(describeParams(k, vp))
	}
}

// describeParams is one line of params list: key, sector size, api version,
// challenges per partition and how many partitions sealers of that size use.
func describeParams(key [32]byte, vp stacked.VerifierParams) string {
	line := "0x" + hex.EncodeToString(key[:])
	sp := vp.SetupParams
	size, err := stacked.SupportedSizeOf(abi.SectorSize(sp.SectorBytes()))
	if err != nil {
		return line + " unsupported"
	}
	return fmt.Sprintf("%s %s %s challenges=%d partitions=%d minimum=%d",
		line, size.Bytes().ShortString(), sp.APIVersion, sp.LayerChallenges.ChallengesCount(), size.Partitions(), vp.MinimumChallenges)
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsSetCmd, paramsGetCmd, paramsListCmd)

	paramsSetCmd.Flags().StringVar(&fBundle, "file", "", "verifier params bundle JSON")
	paramsSetCmd.Flags().StringVar(&fSize, "size", "2KiB", "sector size")
	paramsSetCmd.Flags().DurationVar(&fDuration, "duration", 24*time.Hour, "how long the opened round accepts submissions")
	paramsSetCmd.MarkFlagRequired("file")

	addKeyFlags(paramsGetCmd)
	paramsGetCmd.Flags().StringVar(&fKey, "key", "", "32 byte hex porep key, overrides the other key flags")
}
