package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"dna-embed/internal/chromemdb"
	"dna-embed/internal/config"
	"dna-embed/internal/db"
	"dna-embed/internal/embedding"
	"dna-embed/internal/helper"
	"dna-embed/internal/models"
	"dna-embed/internal/pipeline"
	"dna-embed/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find stored sequences similar to a query sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		query, _ := cmd.Flags().GetString("sequence")
		method, _ := cmd.Flags().GetString("method")
		limit, _ := cmd.Flags().GetInt("limit")
		usePostgres, _ := cmd.Flags().GetBool("postgres")
		asJSON, _ := cmd.Flags().GetBool("json")
		if query == "" {
			return fmt.Errorf("a query sequence is required (--sequence)")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		k, _ := cmd.Flags().GetInt("k")
		embed, err := queryEmbedder(ctx, method, k)
		if err != nil {
			return err
		}

		var vectorDB *chromemdb.VectorDBManager
		var dbInstance *bun.DB
		if usePostgres {
			dbInstance, err = openDB(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer dbInstance.Close()
		} else {
			vectorDB, err = openVectorDB(&cfg.Storage)
			if err != nil {
				return err
			}
		}

		results, err := search.NewSearch(dbInstance, vectorDB, embed, method).Query(ctx, query, limit)
		if err != nil {
			return err
		}

		if asJSON {
			helper.PrettyPrint(results)
			return nil
		}

		out := cmd.OutOrStdout()
		log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Fprintf(out, "%s\n\n", query)

		log.Info().Msg("Matches: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		for i, r := range results {
			fmt.Fprintf(out, "%d. %s (%s, %d bp) score=%.4f\n", i+1, r.SequenceID, r.Method, r.Length, r.Score)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no stored sequences")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("sequence", "s", "", "Query DNA sequence")
	searchCmd.Flags().StringP("method", "m", models.MethodProtVec, "Embedding method (protvec, seq2vec)")
	searchCmd.Flags().IntP("limit", "l", 5, "Maximum number of matches")
	searchCmd.Flags().IntP("k", "k", 0, "k-mer length (defaults to the one saved with the model)")
	searchCmd.Flags().Bool("postgres", false, "Search postgres instead of the chromem vector database")
	searchCmd.Flags().Bool("json", false, "Print matches as JSON")
}

// queryEmbedder embeds queries the same way the stored sequences were
// embedded. k comes from the saved model settings unless k > 0.
func queryEmbedder(ctx context.Context, method string, k int) (search.Embedder, error) {
	switch method {
	case models.MethodProtVec:
		table, err := embedding.LoadTableFile(cfg.ProtVec.ModelPath)
		if err != nil {
			return nil, err
		}
		info, err := loadModelInfo(embedding.InfoPath(cfg.ProtVec.ModelPath), &cfg.ProtVec)
		if err != nil {
			return nil, err
		}
		if info.Dim != table.Dim() {
			log.Warn().Int("settings_dim", info.Dim).Int("table_dim", table.Dim()).Msg("Model settings do not match the table")
		}
		if k <= 0 {
			k = info.K
		}
		log.Debug().Int("k", k).Int("dim", table.Dim()).Msg("Loaded ProtVec model")
		return func(ctx context.Context, sequence string) ([]float32, error) {
			return pipeline.EmbedProtVec(table, k, sequence), nil
		}, nil
	case models.MethodSeq2Vec:
		info, err := loadModelInfo(cfg.Seq2Vec.ModelPath, &cfg.Seq2Vec)
		if err != nil {
			return nil, err
		}
		modelCfg := *cfg
		modelCfg.Model.Backend = info.Backend
		modelCfg.Model.Seed = info.Seed
		if info.Model != "" {
			modelCfg.EmbedLLM.Model = info.Model
		}
		trainer, err := embedding.NewTrainer(&modelCfg)
		if err != nil {
			return nil, err
		}
		inferencer, err := trainer.TrainDocumentModel(ctx, nil, info.Dim)
		if err != nil {
			return nil, err
		}
		if k <= 0 {
			k = info.K
		}
		log.Debug().Int("k", k).Int("dim", info.Dim).Str("backend", info.Backend).Msg("Loaded Seq2Vec model")
		return func(ctx context.Context, sequence string) ([]float32, error) {
			return pipeline.EmbedSeq2Vec(ctx, inferencer, k, sequence)
		}, nil
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

// loadModelInfo reads saved model settings, falling back to the current
// config for models saved without them.
func loadModelInfo(path string, methodCfg *config.MethodConfig) (*embedding.ModelInfo, error) {
	if path != "" {
		info, err := embedding.LoadModelInfo(path)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Warn().Str("path", path).Msg("No saved model settings, using the current config")
	}
	return &embedding.ModelInfo{
		Backend: cfg.Model.Backend,
		Model:   cfg.EmbedLLM.Model,
		Seed:    cfg.Model.Seed,
		K:       methodCfg.K,
		Dim:     methodCfg.VectorSize,
	}, nil
}

func openDB(ctx context.Context, dbCfg *config.DatabaseConfig) (*bun.DB, error) {
	sqldb, err := db.ConnectDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	dbInstance := db.NewDB(sqldb, dbCfg.Debug)
	if err := dbInstance.PingContext(ctx); err != nil {
		dbInstance.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return dbInstance, nil
}
