package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the chromem collection to an encrypted file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			cfg.Storage.ExportPath = path
		}

		vectorDB, err := openVectorDB(&cfg.Storage)
		if err != nil {
			return err
		}
		if err := vectorDB.Export(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d embeddings to %s\n", vectorDB.Count(), cfg.Storage.ExportPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a collection written by export into the vector database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if path, _ := cmd.Flags().GetString("in"); path != "" {
			cfg.Storage.ExportPath = path
		}

		vectorDB, err := openVectorDB(&cfg.Storage)
		if err != nil {
			return err
		}
		if err := vectorDB.Import(ctx, cfg.Storage.Collection); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d embeddings from %s\n", vectorDB.Count(), cfg.Storage.ExportPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringP("out", "o", "", "Export file (defaults to storage.export_path)")
	importCmd.Flags().StringP("in", "i", "", "File to import (defaults to storage.export_path)")
}
