package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"dna-embed/internal/config"
	"dna-embed/internal/models"
)

var errNoEmbeddingFunc = errors.New("sequence embeddings must be computed before they are stored")

// Match is a stored sequence returned by a similarity query
type Match struct {
	SequenceID string
	Method     string
	K          int
	Length     int
	Sequence   string
	Similarity float32
}

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

// NewVectorDBManager opens a persistent database at cfg.Path, or an
// in-memory one when cfg.InMemory is set.
func NewVectorDBManager(cfg *config.StorageConfig) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	filePath := cfg.ExportPath
	if filePath == "" {
		filePath = filepath.Join(cfg.Path, cfg.Collection+".chromem")
	}

	return &VectorDBManager{
		db:            db,
		dbPath:        cfg.Path,
		compress:      cfg.Compress,
		encryptionKey: cfg.EncryptionKey,
		filePath:      filePath,
	}, nil
}

// GetOrCreateCollection opens the named collection. Documents always carry
// their own embeddings, so the collection's embedding func only reports
// misuse.
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errNoEmbeddingFunc
	}
	c, err := m.db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	return c, nil
}

// DocumentID is the collection key of one embedding, e.g. "seq1/protvec"
func DocumentID(sequenceID, method string) string {
	return sequenceID + "/" + method
}

// StoreEmbeddings adds the embeddings to the collection. Zero vectors are
// skipped since cosine similarity is undefined for them.
func (m *VectorDBManager) StoreEmbeddings(ctx context.Context, runID string, embeddings []models.SequenceEmbedding) (int, error) {
	if m.collection == nil {
		return 0, fmt.Errorf("collection is required")
	}

	var docs []chromem.Document
	for _, e := range embeddings {
		if e.IsZero() {
			log.Warn().Str("sequence", e.SequenceID).Str("method", e.Method).Msg("Skipping zero vector")
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      DocumentID(e.SequenceID, e.Method),
			Content: e.Sequence,
			Metadata: map[string]string{
				"sequence_id": e.SequenceID,
				"method":      e.Method,
				"k":           strconv.Itoa(e.K),
				"length":      strconv.Itoa(e.Length),
				"run_id":      runID,
			},
			Embedding: e.Vector,
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("failed to add documents: %v", err)
	}
	return len(docs), nil
}

// Nearest returns up to n stored sequences of the given method closest to
// queryEmbedding by cosine similarity.
func (m *VectorDBManager) Nearest(ctx context.Context, queryEmbedding []float32, method string, n int) ([]Match, error) {
	if m.collection == nil {
		return nil, fmt.Errorf("collection is required")
	}

	var where map[string]string
	if method != "" {
		where = map[string]string{"method": method}
	}
	// chromem rejects nResults above the collection size
	n = min(n, m.collection.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := m.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       n,
		Where:          where,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		k, _ := strconv.Atoi(r.Metadata["k"])
		length, _ := strconv.Atoi(r.Metadata["length"])
		matches = append(matches, Match{
			SequenceID: r.Metadata["sequence_id"],
			Method:     r.Metadata["method"],
			K:          k,
			Length:     length,
			Sequence:   r.Content,
			Similarity: r.Similarity,
		})
	}
	return matches, nil
}

// SearchWithQueryOptions runs a raw similarity query
func (m *VectorDBManager) SearchWithQueryOptions(ctx context.Context, opts chromem.QueryOptions) ([]chromem.Result, error) {
	// exit if query or embedding is not provided
	if opts.QueryText == "" && opts.QueryEmbedding == nil {
		return nil, fmt.Errorf("either query or embedding must be provided")
	}

	results, err := m.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	return results, nil
}

func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	m.collection = nil
	return nil
}

// Export writes the collection to an encrypted file
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}

	log.Debug().Str("collection", m.collection.Name).Str("file", m.filePath).Bool("compress", m.compress).Msg("Exporting collection")
	err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// Import loads a collection previously written by Export
func (m *VectorDBManager) Import(ctx context.Context, collectionName string) error {
	err := m.db.ImportFromFile(m.filePath, m.encryptionKey, collectionName)
	if err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	m.collection = m.db.GetCollection(collectionName, nil)
	return nil
}
