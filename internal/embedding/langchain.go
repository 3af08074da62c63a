package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"dna-embed/internal/config"
	"dna-embed/internal/kmer"
)

const defaultBatchSize = 64

// NewOllamaEmbedder creates an embedder backed by an Ollama server
func NewOllamaEmbedder(llmConfig *config.LLMConfig, batchSize int) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	return newEmbedder(llm, batchSize)
}

// NewOpenAIEmbedder creates an embedder for any OpenAI compatible endpoint
func NewOpenAIEmbedder(llmConfig *config.LLMConfig, batchSize int) (*embeddings.EmbedderImpl, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        llmConfig.BaseURL,
		"embedding_model": llmConfig.Model,
	}).Msg("Creating openai embedder")

	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithEmbeddingModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize openai client: %w", err)
	}
	return newEmbedder(llm, batchSize)
}

func newEmbedder(client embeddings.EmbedderClient, batchSize int) (*embeddings.EmbedderImpl, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// LangchainTrainer delegates to a pretrained langchaingo embedder. The token
// model embeds every vocabulary k-mer; the document model embeds the k-mers
// of a sequence joined by spaces.
type LangchainTrainer struct {
	embedder  embeddings.Embedder
	batchSize int
}

func NewLangchainTrainer(embedder embeddings.Embedder, batchSize int) *LangchainTrainer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &LangchainTrainer{embedder: embedder, batchSize: batchSize}
}

func (l *LangchainTrainer) TrainTokenModel(ctx context.Context, corpus []kmer.Tokens, dim int) (*Table, error) {
	vocab := kmer.Vocabulary(corpus)
	log.Info().Int("vocabulary", len(vocab)).Msg("Embedding k-mer vocabulary")

	table := NewTable(dim)
	for start := 0; start < len(vocab); start += l.batchSize {
		end := min(start+l.batchSize, len(vocab))
		batch := vocab[start:end]

		vectors, err := l.embedder.EmbedDocuments(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed k-mers: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d k-mers", len(vectors), len(batch))
		}
		for i, tok := range batch {
			if err := table.Set(tok, vectors[i]); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

func (l *LangchainTrainer) TrainDocumentModel(ctx context.Context, docs []kmer.TaggedDocument, dim int) (DocumentInferencer, error) {
	log.Info().Int("documents", len(docs)).Msg("Using pretrained embedder as document model")
	return &langchainInferencer{embedder: l.embedder, dim: dim}, nil
}

type langchainInferencer struct {
	embedder embeddings.Embedder
	dim      int
}

func (li *langchainInferencer) Infer(ctx context.Context, tokens kmer.Tokens) ([]float32, error) {
	vec, err := li.embedder.EmbedQuery(ctx, strings.Join(tokens, " "))
	if err != nil {
		return nil, err
	}
	if len(vec) != li.dim {
		return nil, fmt.Errorf("%w: embedder returned %d components, want %d", ErrDimensionMismatch, len(vec), li.dim)
	}
	return vec, nil
}

// NewTrainer builds the backend selected in cfg.Model
func NewTrainer(cfg *config.Config) (Trainer, error) {
	switch cfg.Model.Backend {
	case "random", "":
		return NewRandomTrainer(cfg.Model.Seed), nil
	case "ollama":
		embedder, err := NewOllamaEmbedder(&cfg.EmbedLLM, cfg.Model.BatchSize)
		if err != nil {
			return nil, err
		}
		return NewLangchainTrainer(embedder, cfg.Model.BatchSize), nil
	case "openai":
		embedder, err := NewOpenAIEmbedder(&cfg.EmbedLLM, cfg.Model.BatchSize)
		if err != nil {
			return nil, err
		}
		return NewLangchainTrainer(embedder, cfg.Model.BatchSize), nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Model.Backend)
	}
}
