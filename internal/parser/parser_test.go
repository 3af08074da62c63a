package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tealeg/xlsx"

	"dna-embed/internal/models"
)

func TestParseJSONKeepsFileOrder(t *testing.T) {
	input := `{
    "seq2": {"length": 4, "sequence": "ACGT"},
    "seq10": {"length": 2, "sequence": "AC"},
    "seq1": {"length": 3, "sequence": "GGG"}
}`
	seqs, err := ParseJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	want := []models.Sequence{
		{ID: "seq2", Length: 4, Sequence: "ACGT"},
		{ID: "seq10", Length: 2, Sequence: "AC"},
		{ID: "seq1", Length: 3, Sequence: "GGG"},
	}
	if !reflect.DeepEqual(seqs, want) {
		t.Errorf("ParseJSON() = %+v, want %+v", seqs, want)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[{"sequence": "ACGT"}]`},
		{"truncated", `{"seq1": {"sequence": "AC"`},
		{"bad record", `{"seq1": "ACGT"}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON(strings.NewReader(tt.input)); err == nil {
				t.Errorf("ParseJSON(%q) expected an error", tt.input)
			}
		})
	}
}

func TestParseFASTA(t *testing.T) {
	input := `; comment line
stray text before the first header
>seq1_len_10 first record
ACGTA
CG TA

>seq2_len_2
AC
>empty
`
	seqs, err := ParseFASTA(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseFASTA() error = %v", err)
	}
	want := []models.Sequence{
		{ID: "seq1_len_10", Length: 9, Sequence: "ACGTACGTA"},
		{ID: "seq2_len_2", Length: 2, Sequence: "AC"},
		{ID: "empty", Length: 0, Sequence: ""},
	}
	if !reflect.DeepEqual(seqs, want) {
		t.Errorf("ParseFASTA() = %+v, want %+v", seqs, want)
	}
}

func TestParseSequencesDispatch(t *testing.T) {
	dir := t.TempDir()

	fastaPath := filepath.Join(dir, "random_sequences.fasta")
	os.WriteFile(fastaPath, []byte(">seq1\nACGT\n"), 0o644)
	jsonPath := filepath.Join(dir, "random_sequences.json")
	os.WriteFile(jsonPath, []byte(`{"seq1": {"length": 4, "sequence": "ACGT"}}`), 0o644)

	for _, path := range []string{fastaPath, jsonPath} {
		seqs, err := ParseSequences(path)
		if err != nil {
			t.Fatalf("ParseSequences(%s) error = %v", path, err)
		}
		if len(seqs) != 1 || seqs[0].ID != "seq1" || seqs[0].Sequence != "ACGT" {
			t.Errorf("ParseSequences(%s) = %+v", path, seqs)
		}
	}

	if _, err := ParseSequences(filepath.Join(dir, "reads.bam")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseSequences(.bam) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := ParseSequences(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("ParseSequences() expected an error for a missing file")
	}
}

func TestParseXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.xlsx")

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	rows := [][]string{
		{"id", "sequence"},
		{"plasmid_a", "ACGTAC"},
		{"TTGGA"},
	}
	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().Value = v
		}
	}
	if err := file.Save(path); err != nil {
		t.Fatal(err)
	}

	seqs, err := ParseSequences(path)
	if err != nil {
		t.Fatalf("ParseSequences() error = %v", err)
	}
	want := []models.Sequence{
		{ID: "plasmid_a", Length: 6, Sequence: "ACGTAC"},
		{ID: "seq2", Length: 5, Sequence: "TTGGA"},
	}
	if !reflect.DeepEqual(seqs, want) {
		t.Errorf("ParseSequences() = %+v, want %+v", seqs, want)
	}
}

func TestExtractParagraphs(t *testing.T) {
	xmlContent := `<w:body><w:p><w:r><w:t>&gt;seq1</w:t></w:r></w:p>` +
		`<w:p w:rsidR="00"><w:r><w:t xml:space="preserve">ACG</w:t></w:r><w:r><w:t>TAC</w:t></w:r></w:p></w:body>`
	got := extractParagraphs(xmlContent)
	want := []string{">seq1", "ACGTAC"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractParagraphs() = %q, want %q", got, want)
	}
}
