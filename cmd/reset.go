package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dna-embed/internal/db"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored embeddings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		vectorDB, err := openVectorDB(&cfg.Storage)
		if err != nil {
			return err
		}
		if err := vectorDB.DeleteCollection(); err != nil {
			return err
		}
		log.Info().Str("collection", cfg.Storage.Collection).Msg("Deleted vector database collection")

		if postgres, _ := cmd.Flags().GetBool("postgres"); postgres {
			dbInstance, err := openDB(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer dbInstance.Close()

			if err := db.DropEmbeddings(ctx, dbInstance); err != nil {
				return err
			}
			log.Info().Msg("Dropped postgres embeddings table")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("postgres", false, "Also drop the postgres embeddings table")
}
