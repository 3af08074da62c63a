package parser

import (
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"

	"dna-embed/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

var (
	docxParagraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	docxTextRe      = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>([^<]*)</w:t>`)
)

// ParseSequences reads the records of a .json, FASTA, .docx, .pdf or .xlsx file
func ParseSequences(filePath string) ([]models.Sequence, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	log.Debug().Str("file", filePath).Str("format", ext).Msg("Parsing sequences")

	switch ext {
	case ".json":
		return parseJSONFile(filePath)
	case ".fa", ".fasta", ".fna", ".txt":
		return parseFASTAFile(filePath)
	case ".docx":
		return parseDOCX(filePath)
	case ".pdf":
		return parsePDF(filePath)
	case ".xlsx":
		return parseXLSX(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseJSONFile(filePath string) ([]models.Sequence, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseJSON(f)
}

func parseFASTAFile(filePath string) ([]models.Sequence, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFASTA(f)
}

// parseDOCX reads FASTA text typed into a Word document, one paragraph per line
func parseDOCX(filePath string) ([]models.Sequence, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	lines := extractParagraphs(r.Editable().GetContent())
	return ParseFASTA(strings.NewReader(strings.Join(lines, "\n")))
}

func extractParagraphs(xmlContent string) []string {
	var lines []string
	for _, para := range docxParagraphRe.FindAllString(xmlContent, -1) {
		var text strings.Builder
		for _, m := range docxTextRe.FindAllStringSubmatch(para, -1) {
			text.WriteString(html.UnescapeString(m[1]))
		}
		lines = append(lines, text.String())
	}
	return lines
}

// parsePDF reads FASTA text from the pages of a PDF
func parsePDF(filePath string) ([]models.Sequence, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return ParseFASTA(strings.NewReader(text.String()))
}

// parseXLSX reads "id, sequence" rows from every sheet. A single-column row
// is a bare sequence and gets a positional id. A header row starting with
// "id" is skipped.
func parseXLSX(filePath string) ([]models.Sequence, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var seqs []models.Sequence
	for _, sheet := range f.Sheets {
		for rowNum, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				cells = append(cells, strings.TrimSpace(cell.String()))
			}
			if len(cells) == 0 || (len(cells) == 1 && cells[0] == "") {
				continue
			}
			if rowNum == 0 && strings.EqualFold(cells[0], "id") {
				continue
			}

			seq := models.Sequence{}
			if len(cells) == 1 || cells[1] == "" {
				seq.ID = fmt.Sprintf(models.SequenceIDFormat, len(seqs)+1)
				seq.Sequence = cells[0]
			} else {
				seq.ID = cells[0]
				seq.Sequence = cells[1]
			}
			seq.Length = len(seq.Sequence)
			seqs = append(seqs, seq)
		}
	}
	return seqs, nil
}
