package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dna-embed/internal/chromemdb"
	"dna-embed/internal/config"
	"dna-embed/internal/db"
	"dna-embed/internal/embedding"
	"dna-embed/internal/helper"
	"dna-embed/internal/models"
	"dna-embed/internal/parser"
	"dna-embed/internal/pipeline"
	"dna-embed/internal/report"
)

var protvecCmd = &cobra.Command{
	Use:   "protvec",
	Short: "Embed sequences by averaging k-mer vectors (default k=3)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmbed(cmd, models.MethodProtVec, &cfg.ProtVec)
	},
}

var seq2vecCmd = &cobra.Command{
	Use:   "seq2vec",
	Short: "Embed sequences by document vector inference (default k=6)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEmbed(cmd, models.MethodSeq2Vec, &cfg.Seq2Vec)
	},
}

func init() {
	for _, c := range []*cobra.Command{protvecCmd, seq2vecCmd} {
		rootCmd.AddCommand(c)

		c.Flags().StringP("input", "i", "", "Sequence file (.json, .fasta, .docx, .pdf, .xlsx); defaults to the generator json")
		c.Flags().IntP("k", "k", 0, "k-mer length")
		c.Flags().Int("vector-size", 0, "Embedding dimensionality")
		c.Flags().String("backend", "", "Model backend (random, ollama, openai)")
		c.Flags().Bool("store", false, "Store embeddings in the chromem vector database")
		c.Flags().Bool("postgres", false, "Store embeddings in postgres (pgvector)")
		c.Flags().String("xlsx", "", "Write embeddings to this spreadsheet")
		c.Flags().String("report", "", "Write an HTML run summary to this file")
	}
	protvecCmd.Flags().String("model-out", "", "Save the trained k-mer table to this file")
	seq2vecCmd.Flags().String("model-out", "", "Save the document model settings to this file")
}

// applyMethodFlags copies explicitly set flags over the loaded config
func applyMethodFlags(cmd *cobra.Command, methodCfg *config.MethodConfig) {
	flags := cmd.Flags()
	if flags.Changed("k") {
		methodCfg.K, _ = flags.GetInt("k")
	}
	if flags.Changed("vector-size") {
		methodCfg.VectorSize, _ = flags.GetInt("vector-size")
	}
	if flags.Changed("model-out") {
		methodCfg.ModelPath, _ = flags.GetString("model-out")
	}
	if flags.Changed("backend") {
		cfg.Model.Backend, _ = flags.GetString("backend")
	}
	if store, _ := flags.GetBool("store"); store {
		cfg.Storage.Enabled = true
	}
	if pg, _ := flags.GetBool("postgres"); pg {
		cfg.Database.Enabled = true
	}
}

func runEmbed(cmd *cobra.Command, method string, methodCfg *config.MethodConfig) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	applyMethodFlags(cmd, methodCfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		input = cfg.Generator.JSONPath
	}

	fmt.Println("Loading DNA sequences...")
	seqs, err := parser.ParseSequences(input)
	if err != nil {
		return fmt.Errorf("failed to load sequences: %w", err)
	}

	trainer, err := embedding.NewTrainer(cfg)
	if err != nil {
		return err
	}

	var embeddings []models.SequenceEmbedding
	switch method {
	case models.MethodProtVec:
		fmt.Println("Training ProtVec model...")
		result, err := pipeline.RunProtVec(ctx, *methodCfg, trainer, seqs)
		if err != nil {
			return err
		}
		if methodCfg.ModelPath != "" {
			if err := embedding.SaveModelInfo(embedding.InfoPath(methodCfg.ModelPath), modelInfo(method, methodCfg)); err != nil {
				return err
			}
			fmt.Printf("Saved model as %s\n", methodCfg.ModelPath)
		}
		embeddings = result.Embeddings
	case models.MethodSeq2Vec:
		fmt.Println("Training Seq2Vec model...")
		result, err := pipeline.RunSeq2Vec(ctx, *methodCfg, trainer, seqs)
		if err != nil {
			return err
		}
		// the inferencer is rebuilt from these settings at query time
		if methodCfg.ModelPath != "" {
			if err := embedding.SaveModelInfo(methodCfg.ModelPath, modelInfo(method, methodCfg)); err != nil {
				return err
			}
			fmt.Printf("Saved model as %s\n", methodCfg.ModelPath)
		}
		embeddings = result.Embeddings
	}

	fmt.Println("\nSequence embeddings:")
	for _, e := range embeddings {
		fmt.Printf("%s embedding shape: %s\n", e.SequenceID, helper.ShapeString(len(e.Vector)))
	}

	runID, err := helper.GenerateUUID()
	if err != nil {
		return err
	}
	run := report.Run{
		ID:         runID,
		Method:     method,
		K:          methodCfg.K,
		VectorSize: methodCfg.VectorSize,
		Backend:    cfg.Model.Backend,
		CreatedAt:  time.Now(),
		Embeddings: embeddings,
	}
	if err := writeOutputs(ctx, cmd, run); err != nil {
		return err
	}

	fmt.Println("\nDone.")
	return nil
}

// modelInfo describes the model trained by the current run
func modelInfo(method string, methodCfg *config.MethodConfig) embedding.ModelInfo {
	info := embedding.ModelInfo{
		Method:  method,
		Backend: cfg.Model.Backend,
		Seed:    cfg.Model.Seed,
		K:       methodCfg.K,
		Dim:     methodCfg.VectorSize,
	}
	if cfg.Model.Backend != "random" {
		info.Model = cfg.EmbedLLM.Model
	}
	return info
}

func writeOutputs(ctx context.Context, cmd *cobra.Command, run report.Run) error {
	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := report.WriteXLSX(path, run.Embeddings); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Wrote embeddings workbook")
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := writeFile(path, func(f *os.File) error { return report.WriteHTML(f, run) }); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("Wrote run report")
	}

	if cfg.Storage.Enabled {
		if cfg.Storage.Ephemeral() {
			log.Warn().Str("collection", cfg.Storage.Collection).
				Msg("Vector database is in memory and no encryption_key is set for export, stored embeddings are lost on exit")
		}
		vectorDB, err := openVectorDB(&cfg.Storage)
		if err != nil {
			return err
		}
		stored, err := vectorDB.StoreEmbeddings(ctx, run.ID, run.Embeddings)
		if err != nil {
			return err
		}
		log.Info().Int("stored", stored).Str("collection", cfg.Storage.Collection).Msg("Stored embeddings in vector database")

		if cfg.Storage.InMemory && cfg.Storage.EncryptionKey != "" {
			if err := vectorDB.Export(ctx); err != nil {
				return err
			}
		}
	}

	if cfg.Database.Enabled {
		dbInstance, err := openDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer dbInstance.Close()

		if err := db.InitDB(ctx, dbInstance); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		stored, err := db.StoreEmbeddings(ctx, dbInstance, run.ID, run.Embeddings)
		if err != nil {
			return err
		}
		log.Info().Int("stored", stored).Msg("Stored embeddings in postgres")
	}
	return nil
}

func openVectorDB(storageCfg *config.StorageConfig) (*chromemdb.VectorDBManager, error) {
	if !storageCfg.InMemory {
		if err := helper.CreateFolder(storageCfg.Path); err != nil {
			return nil, err
		}
	}
	vectorDB, err := chromemdb.NewVectorDBManager(storageCfg)
	if err != nil {
		return nil, err
	}
	if _, err := vectorDB.GetOrCreateCollection(storageCfg.Collection); err != nil {
		return nil, err
	}
	return vectorDB, nil
}
