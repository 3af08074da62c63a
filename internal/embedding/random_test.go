package embedding

import (
	"context"
	"reflect"
	"testing"

	"dna-embed/internal/kmer"
)

func TestRandomTrainerDeterministic(t *testing.T) {
	ctx := context.Background()
	corpus := []kmer.Tokens{kmer.Split("ACGTACGTTT", 3), kmer.Split("GGGCCC", 3)}

	a, err := NewRandomTrainer(5).TrainTokenModel(ctx, corpus, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRandomTrainer(5).TrainTokenModel(ctx, corpus, 10)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewRandomTrainer(6).TrainTokenModel(ctx, corpus, 10)
	if err != nil {
		t.Fatal(err)
	}

	if a.Len() != len(kmer.Vocabulary(corpus)) {
		t.Errorf("table has %d tokens, want %d", a.Len(), len(kmer.Vocabulary(corpus)))
	}
	for _, tok := range a.Tokens() {
		if !reflect.DeepEqual(a.VectorOf(tok), b.VectorOf(tok)) {
			t.Errorf("token %s differs across runs with the same seed", tok)
		}
		if reflect.DeepEqual(a.VectorOf(tok), c.VectorOf(tok)) {
			t.Errorf("token %s identical across different seeds", tok)
		}
		for _, v := range a.VectorOf(tok) {
			if v < -0.05 || v >= 0.05 {
				t.Errorf("token %s component %v outside [-0.5/dim, 0.5/dim)", tok, v)
			}
		}
	}
}

func TestRandomInferencer(t *testing.T) {
	ctx := context.Background()
	trainer := NewRandomTrainer(1)
	docs := kmer.BuildDocuments(nil, 6)

	inferencer, err := trainer.TrainDocumentModel(ctx, docs, 12)
	if err != nil {
		t.Fatal(err)
	}
	vec, err := Infer(ctx, inferencer, kmer.Tokens{"AC"})
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if len(vec) != 12 {
		t.Errorf("Infer() returned %d components, want 12", len(vec))
	}
	if !reflect.DeepEqual(vec, trainer.tokenVector("AC", 12)) {
		t.Errorf("single-token inference should equal the token vector")
	}
}

func TestRandomTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandomTrainer(1).TrainTokenModel(ctx, []kmer.Tokens{{"ACG"}}, 4)
	if err == nil {
		t.Fatal("TrainTokenModel() expected context error")
	}
}
