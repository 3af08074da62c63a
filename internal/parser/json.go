package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"dna-embed/internal/models"
)

// ParseJSON reads an object of id -> {"length", "sequence"} records. The
// object is streamed so records come back in file order.
func ParseJSON(r io.Reader) ([]models.Sequence, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("sequence json must be an object, got %v", tok)
	}

	var seqs []models.Sequence
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read sequence id: %w", err)
		}
		id, _ := keyTok.(string)

		var rec models.Sequence
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %q: %w", id, err)
		}
		rec.ID = id
		seqs = append(seqs, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read sequence json: %w", err)
	}
	return seqs, nil
}
