package models

// Sequence is one input record, keyed by its identifier
type Sequence struct {
	ID       string `json:"-"`
	Length   int    `json:"length"`
	Sequence string `json:"sequence"`
}

// SequenceEmbedding is the result of embedding a single sequence
type SequenceEmbedding struct {
	SequenceID string    `json:"sequence_id"`
	Method     string    `json:"method"`
	K          int       `json:"k"`
	Length     int       `json:"length"`
	Tokens     int       `json:"tokens"`
	Matched    int       `json:"matched"`
	Sequence   string    `json:"-"`
	Vector     []float32 `json:"vector"`
}

// IsZero reports whether every component of the vector is zero
func (e SequenceEmbedding) IsZero() bool {
	for _, v := range e.Vector {
		if v != 0 {
			return false
		}
	}
	return true
}
