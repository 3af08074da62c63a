package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dna-embed/internal/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate random DNA sequences as FASTA and JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("count") {
			cfg.Generator.Count, _ = flags.GetInt("count")
		}
		if flags.Changed("min-length") {
			cfg.Generator.MinLength, _ = flags.GetInt("min-length")
		}
		if flags.Changed("max-length") {
			cfg.Generator.MaxLength, _ = flags.GetInt("max-length")
		}
		if flags.Changed("seed") {
			cfg.Generator.Seed, _ = flags.GetInt64("seed")
		}
		if flags.Changed("fasta") {
			cfg.Generator.FastaPath, _ = flags.GetString("fasta")
		}
		if flags.Changed("json") {
			cfg.Generator.JSONPath, _ = flags.GetString("json")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		seqs := generator.Generate(cfg.Generator)
		log.Debug().Int("count", len(seqs)).Msg("Generated sequences")

		if err := writeFile(cfg.Generator.FastaPath, func(f *os.File) error { return generator.SaveFASTA(f, seqs) }); err != nil {
			return err
		}
		if err := writeFile(cfg.Generator.JSONPath, func(f *os.File) error { return generator.SaveMetadata(f, seqs) }); err != nil {
			return err
		}

		fmt.Println("Generated and saved:")
		for _, s := range seqs {
			fmt.Printf(" - %d-bp sequence (%s)\n", s.Length, s.ID)
		}
		fmt.Println("\nFiles saved:")
		fmt.Printf("  %s\n", cfg.Generator.FastaPath)
		fmt.Printf("  %s\n", cfg.Generator.JSONPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntP("count", "n", 2, "Number of sequences to generate")
	generateCmd.Flags().Int("min-length", 100, "Minimum sequence length")
	generateCmd.Flags().Int("max-length", 1000, "Maximum sequence length")
	generateCmd.Flags().Int64("seed", 0, "Random seed (0 uses the clock)")
	generateCmd.Flags().String("fasta", "random_sequences.fasta", "Output FASTA file")
	generateCmd.Flags().String("json", "random_sequences.json", "Output JSON file")
}

// writeFile creates path and hands it to write
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
