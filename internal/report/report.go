// Package report writes run summaries as HTML and embeddings as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"dna-embed/internal/helper"
	"dna-embed/internal/models"
)

const embeddingsSheet = "embeddings"

// Run describes one pipeline run for the summary report
type Run struct {
	ID         string
	Method     string
	K          int
	VectorSize int
	Backend    string
	CreatedAt  time.Time
	Embeddings []models.SequenceEmbedding
}

// Markdown renders the run summary as a GFM document
func Markdown(run Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s embeddings\n\n", run.Method)
	fmt.Fprintf(&b, "- run: `%s`\n", run.ID)
	fmt.Fprintf(&b, "- backend: %s\n", run.Backend)
	fmt.Fprintf(&b, "- k: %d\n", run.K)
	fmt.Fprintf(&b, "- vector size: %d\n", run.VectorSize)
	fmt.Fprintf(&b, "- created: %s\n\n", run.CreatedAt.Format(time.RFC3339))

	b.WriteString("| sequence | length | k-mers | matched | shape |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	zero := 0
	for _, e := range run.Embeddings {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n", e.SequenceID, e.Length, e.Tokens, e.Matched, helper.ShapeString(len(e.Vector)))
		if e.IsZero() {
			zero++
		}
	}
	if zero > 0 {
		fmt.Fprintf(&b, "\n%d of %d sequences had no k-mers in the model and were embedded as zero vectors.\n", zero, len(run.Embeddings))
	}
	return b.String()
}

// WriteHTML renders the run summary to HTML
func WriteHTML(w io.Writer, run Run) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(run)), &buf); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteXLSX saves one row per embedding: id, method, k, length, matched, d0..dN
func WriteXLSX(path string, embeddings []models.SequenceEmbedding) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", embeddingsSheet); err != nil {
		return err
	}

	header := []interface{}{"sequence_id", "method", "k", "length", "matched"}
	width := 0
	for _, e := range embeddings {
		width = max(width, len(e.Vector))
	}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("d%d", i))
	}
	if err := f.SetSheetRow(embeddingsSheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range embeddings {
		row := []interface{}{e.SequenceID, e.Method, e.K, e.Length, e.Matched}
		for _, v := range e.Vector {
			row = append(row, float64(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(embeddingsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
