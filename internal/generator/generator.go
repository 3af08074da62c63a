// Package generator produces random DNA test data and writes it as FASTA
// and JSON.
package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"dna-embed/internal/config"
	"dna-embed/internal/models"
)

// GenerateSequence returns a sequence over models.Alphabet whose length is
// drawn uniformly from [minLen, maxLen].
func GenerateSequence(rng *rand.Rand, minLen, maxLen int) string {
	length := minLen + rng.Intn(maxLen-minLen+1)
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(models.Alphabet[rng.Intn(len(models.Alphabet))])
	}
	return b.String()
}

// Generate creates cfg.Count sequences named seq1..seqN. A zero seed draws
// one from the clock.
func Generate(cfg config.GeneratorConfig) []models.Sequence {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	seqs := make([]models.Sequence, 0, cfg.Count)
	for i := 1; i <= cfg.Count; i++ {
		seq := GenerateSequence(rng, cfg.MinLength, cfg.MaxLength)
		seqs = append(seqs, models.Sequence{
			ID:       fmt.Sprintf(models.SequenceIDFormat, i),
			Length:   len(seq),
			Sequence: seq,
		})
	}
	return seqs
}

// SaveFASTA writes one ">seqN_len_L" record per sequence
func SaveFASTA(w io.Writer, seqs []models.Sequence) error {
	bw := bufio.NewWriter(w)
	for _, s := range seqs {
		header := fmt.Sprintf(models.FastaHeaderFormat, s.ID, s.Length)
		if _, err := fmt.Fprintf(bw, "%s%s\n%s\n", models.FastaHeaderPrefix, header, s.Sequence); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveMetadata writes the id -> {length, sequence} object with 4-space
// indentation, keeping the order of seqs.
func SaveMetadata(w io.Writer, seqs []models.Sequence) error {
	bw := bufio.NewWriter(w)
	if len(seqs) == 0 {
		bw.WriteString("{}")
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, s := range seqs {
		key, err := json.Marshal(s.ID)
		if err != nil {
			return err
		}
		record, err := json.MarshalIndent(s, "    ", "    ")
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "    %s: %s", key, record)
		if i < len(seqs)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("}")
	return bw.Flush()
}
