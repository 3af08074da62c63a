package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/rs/zerolog/log"

	"dna-embed/internal/kmer"
)

// RandomTrainer is an untrained baseline backend. Every token gets a
// pseudo-random vector derived from the seed and the token itself, drawn
// the way word2vec initialises its input vectors. The same seed always
// gives the same model.
type RandomTrainer struct {
	seed int64
}

func NewRandomTrainer(seed int64) *RandomTrainer {
	return &RandomTrainer{seed: seed}
}

func (r *RandomTrainer) TrainTokenModel(ctx context.Context, corpus []kmer.Tokens, dim int) (*Table, error) {
	vocab := kmer.Vocabulary(corpus)
	log.Debug().Int("vocabulary", len(vocab)).Int("dim", dim).Msg("Initialising random token vectors")

	table := NewTable(dim)
	for _, tok := range vocab {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := table.Set(tok, r.tokenVector(tok, dim)); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (r *RandomTrainer) TrainDocumentModel(ctx context.Context, docs []kmer.TaggedDocument, dim int) (DocumentInferencer, error) {
	log.Debug().Int("documents", len(docs)).Int("dim", dim).Msg("Preparing random document inferencer")
	return &randomInferencer{trainer: r, dim: dim}, nil
}

func (r *RandomTrainer) tokenVector(token string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(token))
	rng := rand.New(rand.NewSource(r.seed ^ int64(h.Sum64())))

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = (rng.Float32() - 0.5) / float32(dim)
	}
	return vec
}

// randomInferencer averages the baseline token vectors of a document
type randomInferencer struct {
	trainer *RandomTrainer
	dim     int
}

func (ri *randomInferencer) Infer(ctx context.Context, tokens kmer.Tokens) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table := NewTable(ri.dim)
	for _, tok := range tokens {
		if table.Contains(tok) {
			continue
		}
		if err := table.Set(tok, ri.trainer.tokenVector(tok, ri.dim)); err != nil {
			return nil, err
		}
	}
	return Average(table, tokens), nil
}
