package parser

import (
	"bufio"
	"io"
	"strings"

	"dna-embed/internal/models"
)

type fastaParserState struct {
	id       string
	inRecord bool
	content  strings.Builder
	result   []models.Sequence
}

// ParseFASTA reads FASTA records. The id is the first word of the header;
// sequence lines are joined with whitespace removed. Lines starting with ';'
// and text before the first header are ignored.
func ParseFASTA(r io.Reader) ([]models.Sequence, error) {
	var state fastaParserState

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		processFASTALine(line, &state)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flushRecord(&state)
	return state.result, nil
}

func processFASTALine(line string, state *fastaParserState) {
	if strings.HasPrefix(line, models.FastaHeaderPrefix) {
		flushRecord(state)
		header := strings.TrimSpace(strings.TrimPrefix(line, models.FastaHeaderPrefix))
		if fields := strings.Fields(header); len(fields) > 0 {
			state.id = fields[0]
		} else {
			state.id = ""
		}
		state.inRecord = true
		return
	}
	if !state.inRecord {
		return
	}
	for _, field := range strings.Fields(line) {
		state.content.WriteString(field)
	}
}

// flushRecord stores the current record, if any, and resets the buffer
func flushRecord(state *fastaParserState) {
	if state.inRecord {
		seq := state.content.String()
		state.result = append(state.result, models.Sequence{
			ID:       state.id,
			Length:   len(seq),
			Sequence: seq,
		})
	}
	state.inRecord = false
	state.content.Reset()
}
