package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"dna-embed/internal/config"
	"dna-embed/internal/models"
)

// Vector is a pgvector value, encoded as "[v1,v2,...]"
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

func (v *Vector) Scan(src any) error {
	var s string
	switch src := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		s = string(src)
	case string:
		s = src
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return fmt.Errorf("invalid vector literal %q", s)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}

// SequenceEmbedding is one row of the sequence_embeddings table
type SequenceEmbedding struct {
	bun.BaseModel `bun:"table:sequence_embeddings,alias:se"`
	ID            int64     `bun:"id,pk,autoincrement"`
	RunID         string    `bun:"run_id,notnull"`
	SequenceID    string    `bun:"sequence_id,notnull,unique:sequence_method"`
	Method        string    `bun:"method,notnull,unique:sequence_method"`
	K             int       `bun:"k,notnull"`
	Length        int       `bun:"length,notnull"`
	Sequence      string    `bun:"sequence,notnull"`
	Embedding     Vector    `bun:"embedding,notnull,type:vector"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the database with the configured driver
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	switch cfg.Driver {
	case "pq":
		return sql.Open("postgres", cfg.DSN)
	case "pgdriver", "":
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// InitDB enables pgvector and creates the embeddings table
func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	_, err := db.NewCreateTable().Model((*SequenceEmbedding)(nil)).IfNotExists().Exec(ctx)
	return err
}

// newRows maps embeddings to table rows. Zero vectors are kept: L2
// distance is defined for them, unlike cosine in chromem.
func newRows(runID string, embeddings []models.SequenceEmbedding) []SequenceEmbedding {
	rows := make([]SequenceEmbedding, 0, len(embeddings))
	for _, e := range embeddings {
		rows = append(rows, SequenceEmbedding{
			RunID:      runID,
			SequenceID: e.SequenceID,
			Method:     e.Method,
			K:          e.K,
			Length:     e.Length,
			Sequence:   e.Sequence,
			Embedding:  Vector(e.Vector),
		})
	}
	return rows
}

// StoreEmbeddings upserts one row per (sequence, method)
func StoreEmbeddings(ctx context.Context, db *bun.DB, runID string, embeddings []models.SequenceEmbedding) (int, error) {
	rows := newRows(runID, embeddings)
	if len(rows) == 0 {
		return 0, nil
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (sequence_id, method) DO UPDATE").
		Set("run_id = EXCLUDED.run_id").
		Set("k = EXCLUDED.k").
		Set("length = EXCLUDED.length").
		Set("sequence = EXCLUDED.sequence").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}
	return len(rows), nil
}

// SearchEmbeddings returns the rows of method nearest to queryEmbedding by L2 distance
func SearchEmbeddings(ctx context.Context, db *bun.DB, queryEmbedding []float32, method string, limit int) ([]SequenceEmbedding, error) {
	var rows []SequenceEmbedding
	q := db.NewSelect().
		Model(&rows).
		OrderExpr("embedding <-> ?", Vector(queryEmbedding)).
		Limit(limit)
	if method != "" {
		q = q.Where("method = ?", method)
	}
	err := q.Scan(ctx)
	return rows, err
}

// drop table sequence_embeddings
func DropEmbeddings(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*SequenceEmbedding)(nil)).IfExists().Exec(ctx)
	return err
}
