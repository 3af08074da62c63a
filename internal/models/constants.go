package models

const (
	// Alphabet is the symbol set used for generated sequences
	Alphabet = "ACGT"

	MethodProtVec = "protvec"
	MethodSeq2Vec = "seq2vec"

	FastaHeaderPrefix = ">"
	// FastaHeaderFormat names generated records, e.g. ">seq1_len_250"
	FastaHeaderFormat = "%s_len_%d"
	SequenceIDFormat  = "seq%d"
)
