// Package pipeline runs the two embedding methods over a set of sequences.
//
// ProtVec: BuildCorpus -> TrainTokenModel -> Average per sequence.
// Seq2Vec: BuildDocuments -> TrainDocumentModel -> Infer per sequence.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dna-embed/internal/config"
	"dna-embed/internal/embedding"
	"dna-embed/internal/kmer"
	"dna-embed/internal/models"
)

// ProtVecResult holds the trained token table and one embedding per sequence
type ProtVecResult struct {
	Table      *embedding.Table
	Embeddings []models.SequenceEmbedding
}

// Seq2VecResult holds the document inferencer and one embedding per sequence
type Seq2VecResult struct {
	Inferencer embedding.DocumentInferencer
	Embeddings []models.SequenceEmbedding
}

// RunProtVec trains a token model on the k-mer corpus of seqs and averages
// each sequence's token vectors. The table is written to cfg.ModelPath when
// it is set.
func RunProtVec(ctx context.Context, cfg config.MethodConfig, trainer embedding.TokenModelTrainer, seqs []models.Sequence) (*ProtVecResult, error) {
	log.Info().Int("sequences", len(seqs)).Int("k", cfg.K).Msg("Building corpus")
	corpus := kmer.BuildCorpus(seqs, cfg.K)

	log.Info().Int("vector_size", cfg.VectorSize).Msg("Training ProtVec model")
	table, err := trainer.TrainTokenModel(ctx, corpus, cfg.VectorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to train token model: %w", err)
	}

	if cfg.ModelPath != "" {
		if err := table.SaveFile(cfg.ModelPath); err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.ModelPath).Msg("Saved model")
	}

	result := &ProtVecResult{Table: table}
	for i, s := range seqs {
		vec, matched := embedding.AverageWithCoverage(table, corpus[i])
		if matched == 0 {
			log.Warn().Str("sequence", s.ID).Int("length", len(s.Sequence)).Int("k", cfg.K).
				Msg("No k-mers found in the model, using zero vector")
		} else if matched < len(corpus[i]) {
			log.Debug().Str("sequence", s.ID).Int("matched", matched).Int("tokens", len(corpus[i])).
				Msg("Skipped k-mers missing from the model")
		}
		result.Embeddings = append(result.Embeddings, models.SequenceEmbedding{
			SequenceID: s.ID,
			Method:     models.MethodProtVec,
			K:          cfg.K,
			Length:     len(s.Sequence),
			Tokens:     len(corpus[i]),
			Matched:    matched,
			Sequence:   s.Sequence,
			Vector:     vec,
		})
	}
	return result, nil
}

// EmbedProtVec embeds one sequence with an already trained table
func EmbedProtVec(table embedding.TokenVectorTable, k int, seq string) []float32 {
	return embedding.Average(table, kmer.Split(seq, k))
}

// RunSeq2Vec trains a document model on the tagged k-mer documents of seqs
// and infers one vector per sequence. The first inference error aborts the
// run.
func RunSeq2Vec(ctx context.Context, cfg config.MethodConfig, trainer embedding.DocumentModelTrainer, seqs []models.Sequence) (*Seq2VecResult, error) {
	log.Info().Int("sequences", len(seqs)).Int("k", cfg.K).Msg("Building documents")
	docs := kmer.BuildDocuments(seqs, cfg.K)

	log.Info().Int("vector_size", cfg.VectorSize).Msg("Training Seq2Vec model")
	inferencer, err := trainer.TrainDocumentModel(ctx, docs, cfg.VectorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to train document model: %w", err)
	}

	result := &Seq2VecResult{Inferencer: inferencer}
	for i, s := range seqs {
		vec, err := embedding.Infer(ctx, inferencer, docs[i].Words)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", s.ID, err)
		}
		result.Embeddings = append(result.Embeddings, models.SequenceEmbedding{
			SequenceID: s.ID,
			Method:     models.MethodSeq2Vec,
			K:          cfg.K,
			Length:     len(s.Sequence),
			Tokens:     len(docs[i].Words),
			Matched:    len(docs[i].Words),
			Sequence:   s.Sequence,
			Vector:     vec,
		})
	}
	return result, nil
}

// EmbedSeq2Vec embeds one sequence with an already trained inferencer
func EmbedSeq2Vec(ctx context.Context, inferencer embedding.DocumentInferencer, k int, seq string) ([]float32, error) {
	return embedding.Infer(ctx, inferencer, kmer.SplitOrWhole(seq, k))
}
