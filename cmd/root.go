package cmd

import (
	"os"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/config"
)

var (
	fConfig    string
	fDatastore string
	fLogLevel  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "porep-verifier",
	Short:             "verifies stacked DRG proofs of replication",
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(fConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("datastore") {
		cfg.Datastore.Path = fDatastore
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = fLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	logger.Set(log.Logger)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fConfig, "config", "~/.porep-verifier/config.toml", "path of the TOML config file")
	rootCmd.PersistentFlags().StringVar(&fDatastore, "datastore", "", "datastore directory, overrides the config (empty for in-memory)")
	rootCmd.PersistentFlags().StringVar(&fLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}
