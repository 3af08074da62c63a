package embedding

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Table is an in-memory TokenVectorTable. It is filled by a trainer and
// read-only afterwards.
type Table struct {
	dim     int
	tokens  []string
	vectors map[string][]float32
}

func NewTable(dim int) *Table {
	return &Table{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// Set stores vec for token, replacing any previous vector
func (t *Table) Set(token string, vec []float32) error {
	if len(vec) != t.dim {
		return fmt.Errorf("%w: token %q has %d components, table has %d", ErrDimensionMismatch, token, len(vec), t.dim)
	}
	if _, ok := t.vectors[token]; !ok {
		t.tokens = append(t.tokens, token)
	}
	t.vectors[token] = slices.Clone(vec)
	return nil
}

func (t *Table) Contains(token string) bool {
	_, ok := t.vectors[token]
	return ok
}

// VectorOf returns a copy of the token's vector, or nil if it is unknown
func (t *Table) VectorOf(token string) []float32 {
	return slices.Clone(t.vectors[token])
}

func (t *Table) Dim() int { return t.dim }

func (t *Table) Len() int { return len(t.tokens) }

// Tokens returns the vocabulary in insertion order
func (t *Table) Tokens() []string {
	return slices.Clone(t.tokens)
}

// Save writes the table in word2vec text format: a "<count> <dim>" header
// followed by one "<token> <v1> ... <vdim>" line per token.
func (t *Table) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(t.tokens), t.dim); err != nil {
		return err
	}
	for _, tok := range t.tokens {
		bw.WriteString(tok)
		for _, v := range t.vectors[tok] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return f.Close()
}

// LoadTable reads a table written by Save
func LoadTable(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty model file")
	}

	var count, dim int
	if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &count, &dim); err != nil {
		return nil, fmt.Errorf("invalid model header %q: %w", scanner.Text(), err)
	}

	table := NewTable(dim)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		vec := make([]float32, 0, len(fields)-1)
		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid value for token %q: %w", fields[0], err)
			}
			vec = append(vec, float32(v))
		}
		if err := table.Set(fields[0], vec); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if table.Len() != count {
		return nil, fmt.Errorf("model header declares %d tokens, found %d", count, table.Len())
	}
	return table, nil
}

func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}
