package search

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"dna-embed/internal/chromemdb"
	"dna-embed/internal/db"
)

var ErrZeroQuery = errors.New("query sequence has no embedding: no k-mers found in the model")

// Embedder turns a query sequence into a vector with a trained model
type Embedder func(ctx context.Context, sequence string) ([]float32, error)

// Result is a stored sequence ranked against a query
type Result struct {
	SequenceID string
	Method     string
	Length     int
	Sequence   string
	// Score is cosine similarity for chromem and L2 distance for postgres
	Score float32
}

// Search finds stored sequences similar to a query sequence. Either store
// may be nil; chromem is preferred when both are set.
type Search struct {
	db       *bun.DB
	vectorDB *chromemdb.VectorDBManager
	embed    Embedder
	method   string
}

func NewSearch(db *bun.DB, vectorDB *chromemdb.VectorDBManager, embed Embedder, method string) *Search {
	return &Search{db: db, vectorDB: vectorDB, embed: embed, method: method}
}

func (s *Search) Query(ctx context.Context, sequence string, limit int) ([]Result, error) {
	queryEmbedding, err := s.embed(ctx, sequence)
	if err != nil {
		return nil, err
	}
	if isZero(queryEmbedding) {
		return nil, ErrZeroQuery
	}

	switch {
	case s.vectorDB != nil:
		return s.queryVectorDB(ctx, queryEmbedding, limit)
	case s.db != nil:
		return s.queryDB(ctx, queryEmbedding, limit)
	default:
		return nil, fmt.Errorf("no embedding store configured")
	}
}

func (s *Search) queryVectorDB(ctx context.Context, queryEmbedding []float32, limit int) ([]Result, error) {
	matches, err := s.vectorDB.Nearest(ctx, queryEmbedding, s.method, limit)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("matches", len(matches)).Msg("Queried vector database")

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			SequenceID: m.SequenceID,
			Method:     m.Method,
			Length:     m.Length,
			Sequence:   m.Sequence,
			Score:      m.Similarity,
		})
	}
	return results, nil
}

func (s *Search) queryDB(ctx context.Context, queryEmbedding []float32, limit int) ([]Result, error) {
	rows, err := db.SearchEmbeddings(ctx, s.db, queryEmbedding, s.method, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	log.Debug().Int("matches", len(rows)).Msg("Queried postgres")

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			SequenceID: row.SequenceID,
			Method:     row.Method,
			Length:     row.Length,
			Sequence:   row.Sequence,
			Score:      l2(queryEmbedding, row.Embedding),
		})
	}
	return results, nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func l2(a, b []float32) float32 {
	var sum float64
	for i := 0; i < len(a) && i < len(b); i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
