package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dna-embed/internal/config"
)

const defaultConfigFilePath = "./configs/config.yaml"

var (
	cfg *config.Config

	configFilePath string
	logLevel       string
)

// rootCmd is the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dna-embed",
	Short: "Generate DNA sequences and embed them with k-mer models",
	Long: `Generates random DNA test data and computes sequence embeddings with
two k-mer methods:

  protvec  average of per k-mer vectors (skip-gram style)
  seq2vec  document vector inference over the k-mer document`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(logLevel); err != nil {
			return err
		}

		var err error
		cfg, err = config.LoadOrDefault(configFilePath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log.Debug().Interface("config", cfg).Msg("Loaded config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", defaultConfigFilePath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func setupLogger(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()
	return nil
}
