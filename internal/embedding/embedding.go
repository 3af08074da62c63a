// Package embedding turns k-mer token sequences into sequence vectors.
//
// The embedding models are external capabilities: a TokenVectorTable for
// averaging (ProtVec) and a DocumentInferencer for paragraph-vector
// inference (Seq2Vec). Trainers producing them live in this package too,
// one per backend.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"dna-embed/internal/kmer"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// TokenVectorTable is a trained, read-only token -> vector lookup
type TokenVectorTable interface {
	Contains(token string) bool
	VectorOf(token string) []float32
	Dim() int
}

// DocumentInferencer produces one vector for a whole token sequence
type DocumentInferencer interface {
	Infer(ctx context.Context, tokens kmer.Tokens) ([]float32, error)
}

type TokenModelTrainer interface {
	TrainTokenModel(ctx context.Context, corpus []kmer.Tokens, dim int) (*Table, error)
}

type DocumentModelTrainer interface {
	TrainDocumentModel(ctx context.Context, docs []kmer.TaggedDocument, dim int) (DocumentInferencer, error)
}

// Trainer is a backend able to train both kinds of model
type Trainer interface {
	TokenModelTrainer
	DocumentModelTrainer
}

// Average returns the element-wise mean of the vectors of the tokens found
// in table. Tokens missing from the table are skipped; if none are found the
// zero vector of table.Dim() is returned.
func Average(table TokenVectorTable, tokens kmer.Tokens) []float32 {
	vec, _ := AverageWithCoverage(table, tokens)
	return vec
}

// AverageWithCoverage is Average that also reports how many tokens were
// found in the table.
//
// Tokens are tallied and summed in sorted order, so the result is bit-identical
// for any ordering of tokens.
func AverageWithCoverage(table TokenVectorTable, tokens kmer.Tokens) ([]float32, int) {
	dim := table.Dim()
	mean := make([]float32, dim)

	counts := make(map[string]int)
	matched := 0
	for _, tok := range tokens {
		if !table.Contains(tok) {
			continue
		}
		counts[tok]++
		matched++
	}
	if matched == 0 {
		return mean, 0
	}

	sum := make([]float64, dim)
	for _, tok := range slices.Sorted(maps.Keys(counts)) {
		weight := float64(counts[tok])
		vec := table.VectorOf(tok)
		for i := 0; i < dim && i < len(vec); i++ {
			sum[i] += weight * float64(vec[i])
		}
	}
	for i := range sum {
		mean[i] = float32(sum[i] / float64(matched))
	}
	return mean, matched
}

// Infer returns the inferencer's vector for tokens without post-processing
func Infer(ctx context.Context, inferencer DocumentInferencer, tokens kmer.Tokens) ([]float32, error) {
	vec, err := inferencer.Infer(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to infer document vector: %w", err)
	}
	return vec, nil
}
