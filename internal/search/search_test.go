package search

import (
	"context"
	"errors"
	"testing"

	"dna-embed/internal/chromemdb"
	"dna-embed/internal/config"
	"dna-embed/internal/embedding"
	"dna-embed/internal/models"
	"dna-embed/internal/pipeline"
)

func TestQueryVectorDB(t *testing.T) {
	ctx := context.Background()
	seqs := []models.Sequence{
		{ID: "seq1", Sequence: "ACGTACGTACGTACGT"},
		{ID: "seq2", Sequence: "TTTTGGGGCCCCAAAA"},
		{ID: "seq3", Sequence: "GATTACAGATTACA"},
	}
	cfg := config.MethodConfig{K: 3, VectorSize: 32}
	result, err := pipeline.RunProtVec(ctx, cfg, embedding.NewRandomTrainer(11), seqs)
	if err != nil {
		t.Fatal(err)
	}

	vectorDB, err := chromemdb.NewVectorDBManager(&config.StorageConfig{InMemory: true, Collection: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vectorDB.GetOrCreateCollection("test"); err != nil {
		t.Fatal(err)
	}
	if _, err := vectorDB.StoreEmbeddings(ctx, "run", result.Embeddings); err != nil {
		t.Fatal(err)
	}

	embed := func(ctx context.Context, sequence string) ([]float32, error) {
		return pipeline.EmbedProtVec(result.Table, cfg.K, sequence), nil
	}
	s := NewSearch(nil, vectorDB, embed, models.MethodProtVec)

	results, err := s.Query(ctx, "GATTACAGATTACA", 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Query() returned %d results, want 2", len(results))
	}
	if results[0].SequenceID != "seq3" {
		t.Errorf("Query() best match = %s, want seq3", results[0].SequenceID)
	}
	if results[0].Score < 0.999 {
		t.Errorf("Query() identical sequence similarity = %v, want ~1", results[0].Score)
	}

	// no trimer of "AC" exists, so the query has no embedding
	if _, err := s.Query(ctx, "AC", 2); !errors.Is(err, ErrZeroQuery) {
		t.Errorf("Query(short) error = %v, want ErrZeroQuery", err)
	}
}

func TestQueryWithoutStore(t *testing.T) {
	embed := func(ctx context.Context, sequence string) ([]float32, error) {
		return []float32{1}, nil
	}
	if _, err := NewSearch(nil, nil, embed, "").Query(context.Background(), "ACGT", 1); err == nil {
		t.Error("Query() without a store expected an error")
	}
}

func TestL2(t *testing.T) {
	if got := l2([]float32{0, 0}, []float32{3, 4}); got != 5 {
		t.Errorf("l2() = %v, want 5", got)
	}
}
