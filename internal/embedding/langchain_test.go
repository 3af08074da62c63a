package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dna-embed/internal/config"
	"dna-embed/internal/kmer"
)

// fakeEmbedder implements langchaingo's embeddings.Embedder
type fakeEmbedder struct {
	dim     int
	batches [][]string
	queries []string
	err     error
}

func (f *fakeEmbedder) vector(text string) []float32 {
	vec := make([]float32, f.dim)
	for i := range vec {
		vec[i] = float32(len(text) + i)
	}
	return vec
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vector(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, text)
	return f.vector(text), nil
}

func TestLangchainTokenModel(t *testing.T) {
	fake := &fakeEmbedder{dim: 4}
	trainer := NewLangchainTrainer(fake, 2)
	corpus := []kmer.Tokens{kmer.Split("ACGTACGT", 3)}

	table, err := trainer.TrainTokenModel(context.Background(), corpus, 4)
	if err != nil {
		t.Fatalf("TrainTokenModel() error = %v", err)
	}
	// vocabulary ACG, CGT, GTA, TAC in batches of two
	if len(fake.batches) != 2 {
		t.Errorf("EmbedDocuments called %d times, want 2", len(fake.batches))
	}
	if table.Len() != 4 {
		t.Errorf("table has %d tokens, want 4", table.Len())
	}
}

func TestLangchainTokenModelDimensionMismatch(t *testing.T) {
	trainer := NewLangchainTrainer(&fakeEmbedder{dim: 768}, 0)
	_, err := trainer.TrainTokenModel(context.Background(), []kmer.Tokens{{"ACG"}}, 100)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("TrainTokenModel() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestLangchainInferencer(t *testing.T) {
	fake := &fakeEmbedder{dim: 3}
	inferencer, err := NewLangchainTrainer(fake, 0).TrainDocumentModel(context.Background(), nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	vec, err := Infer(context.Background(), inferencer, kmer.Tokens{"ACGTAC", "CGTACG"})
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if len(fake.queries) != 1 || fake.queries[0] != "ACGTAC CGTACG" {
		t.Errorf("EmbedQuery received %v", fake.queries)
	}
	if len(vec) != 3 {
		t.Errorf("Infer() returned %d components, want 3", len(vec))
	}

	fake.err = errors.New("connection refused")
	if _, err := Infer(context.Background(), inferencer, kmer.Tokens{"AC"}); !errors.Is(err, fake.err) {
		t.Errorf("Infer() error = %v, want %v", err, fake.err)
	}
}

func TestNewTrainer(t *testing.T) {
	cfg := config.DefaultConfig()
	trainer, err := NewTrainer(cfg)
	if err != nil {
		t.Fatalf("NewTrainer() error = %v", err)
	}
	if _, ok := trainer.(*RandomTrainer); !ok {
		t.Errorf("NewTrainer() = %T, want *RandomTrainer", trainer)
	}

	cfg.Model.Backend = "word2vec"
	if _, err := NewTrainer(cfg); err == nil || !strings.Contains(err.Error(), "word2vec") {
		t.Errorf("NewTrainer() error = %v, want unknown backend", err)
	}
}
