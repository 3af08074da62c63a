// Package kmer slices sequences into overlapping fixed-length substrings.
package kmer

import (
	"iter"
	"strconv"

	"dna-embed/internal/models"
)

// Tokens is the ordered k-mer sequence of one input sequence
type Tokens []string

// Mode selects how sequences shorter than k are tokenized
type Mode int

const (
	// Strict yields no tokens when the sequence is shorter than k
	Strict Mode = iota
	// WholeFallback yields the whole sequence as its only token when it is shorter than k
	WholeFallback
)

// TaggedDocument is a token sequence labelled for document-vector training
type TaggedDocument struct {
	Words Tokens
	Tags  []string
}

// All yields every window of length k in seq together with its offset.
// Nothing is yielded when k < 1 or len(seq) < k.
func All(seq string, k int) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		if k < 1 {
			return
		}
		for i := 0; i+k <= len(seq); i++ {
			if !yield(i, seq[i:i+k]) {
				return
			}
		}
	}
}

// Split returns the len(seq)-k+1 overlapping k-mers of seq, or an empty
// slice when seq is shorter than k.
func Split(seq string, k int) Tokens {
	if k < 1 || len(seq) < k {
		return Tokens{}
	}
	tokens := make(Tokens, 0, len(seq)-k+1)
	for _, tok := range All(seq, k) {
		tokens = append(tokens, tok)
	}
	return tokens
}

// SplitOrWhole is Split, except a sequence shorter than k becomes a single
// token holding the whole sequence.
func SplitOrWhole(seq string, k int) Tokens {
	if k >= 1 && len(seq) < k {
		return Tokens{seq}
	}
	return Split(seq, k)
}

func Tokenize(seq string, k int, mode Mode) Tokens {
	if mode == WholeFallback {
		return SplitOrWhole(seq, k)
	}
	return Split(seq, k)
}

// BuildCorpus tokenizes every sequence with Split, keeping input order
func BuildCorpus(seqs []models.Sequence, k int) []Tokens {
	corpus := make([]Tokens, 0, len(seqs))
	for _, s := range seqs {
		corpus = append(corpus, Tokenize(s.Sequence, k, Strict))
	}
	return corpus
}

// BuildDocuments tokenizes every sequence with SplitOrWhole and tags it
// with its position in seqs ("0", "1", ...).
func BuildDocuments(seqs []models.Sequence, k int) []TaggedDocument {
	docs := make([]TaggedDocument, 0, len(seqs))
	for idx, s := range seqs {
		docs = append(docs, TaggedDocument{
			Words: Tokenize(s.Sequence, k, WholeFallback),
			Tags:  []string{strconv.Itoa(idx)},
		})
	}
	return docs
}

// Vocabulary returns the distinct tokens of corpus in first-seen order
func Vocabulary(corpus []Tokens) []string {
	seen := make(map[string]struct{})
	var vocab []string
	for _, tokens := range corpus {
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			vocab = append(vocab, tok)
		}
	}
	return vocab
}
