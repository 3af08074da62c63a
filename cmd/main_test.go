package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dna-embed/internal/embedding"
)

var matchLine = regexp.MustCompile(`(?m)^\d+\. seq\d+ \(`)

// resetFlags restores every flag to its default so runs in one process do
// not leak flags into each other.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("dna-embed %v: %v", args, err)
	}
	return out.String()
}

// writeTestConfig writes a config keeping every output under dir and
// returns the flags selecting it.
func writeTestConfig(t *testing.T, dir string) []string {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	config := "protvec:\n  model_path: " + filepath.Join(dir, "protvec_dna.model") + "\n" +
		"seq2vec:\n  model_path: " + filepath.Join(dir, "seq2vec_dna.model") + "\n" +
		"storage:\n  path: " + filepath.Join(dir, "chromemdb") + "\n  collection: test\n" +
		"  encryption_key: 0123456789abcdef0123456789abcdef\n" +
		"  export_path: " + filepath.Join(dir, "embeddings.chromem") + "\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	return []string{"--config", configPath, "--log-level", "error"}
}

func TestGenerateEmbedSearch(t *testing.T) {
	dir := t.TempDir()
	common := writeTestConfig(t, dir)
	jsonPath := filepath.Join(dir, "random_sequences.json")
	fastaPath := filepath.Join(dir, "random_sequences.fasta")
	modelPath := filepath.Join(dir, "protvec_dna.model")
	exportPath := filepath.Join(dir, "embeddings.chromem")

	execute(t, append([]string{"generate", "--count", "3", "--seed", "4",
		"--json", jsonPath, "--fasta", fastaPath}, common...)...)

	xlsxPath := filepath.Join(dir, "embeddings.xlsx")
	reportPath := filepath.Join(dir, "report.html")
	execute(t, append([]string{"protvec", "-i", jsonPath, "--vector-size", "16", "--store",
		"--xlsx", xlsxPath, "--report", reportPath}, common...)...)

	execute(t, append([]string{"seq2vec", "-i", fastaPath, "--vector-size", "16"}, common...)...)

	for _, path := range []string{jsonPath, modelPath, embedding.InfoPath(modelPath), xlsxPath, reportPath,
		filepath.Join(dir, "seq2vec_dna.model")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected output %s: %v", path, err)
		}
	}

	out := execute(t, append([]string{"search", "--sequence", "ACGTACGTTTGACCA", "--limit", "2"}, common...)...)
	if got := len(matchLine.FindAllString(out, -1)); got != 2 {
		t.Errorf("search printed %d matches, want 2:\n%s", got, out)
	}
	execute(t, append([]string{"search", "--sequence", "ACGTACGTTTGACCA", "--limit", "2", "--json"}, common...)...)

	out = execute(t, append([]string{"export"}, common...)...)
	if !strings.Contains(out, "Exported 3 embeddings") {
		t.Errorf("export output = %q, want 3 embeddings", out)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Errorf("expected export file %s: %v", exportPath, err)
	}
	out = execute(t, append([]string{"import"}, common...)...)
	if !strings.Contains(out, "Imported 3 embeddings") {
		t.Errorf("import output = %q, want 3 embeddings", out)
	}
	execute(t, append([]string{"reset"}, common...)...)
}

func TestSearchUsesTrainedK(t *testing.T) {
	dir := t.TempDir()
	common := writeTestConfig(t, dir)
	jsonPath := filepath.Join(dir, "random_sequences.json")

	execute(t, append([]string{"generate", "--count", "3", "--seed", "9",
		"--json", jsonPath, "--fasta", filepath.Join(dir, "random_sequences.fasta")}, common...)...)
	execute(t, append([]string{"protvec", "-i", jsonPath, "--k", "4", "--vector-size", "16", "--store"}, common...)...)
	execute(t, append([]string{"seq2vec", "-i", jsonPath, "--k", "5", "--vector-size", "12", "--store"}, common...)...)

	info, err := embedding.LoadModelInfo(embedding.InfoPath(filepath.Join(dir, "protvec_dna.model")))
	if err != nil {
		t.Fatalf("LoadModelInfo() error = %v", err)
	}
	if info.K != 4 || info.Dim != 16 {
		t.Errorf("saved protvec settings k=%d dim=%d, want k=4 dim=16", info.K, info.Dim)
	}

	// the config still says k=3 and k=6, vector_size=100
	for _, method := range []string{"protvec", "seq2vec"} {
		out := execute(t, append([]string{"search", "--sequence", "ACGTACGTTTGACCA", "--limit", "2",
			"--method", method}, common...)...)
		if got := len(matchLine.FindAllString(out, -1)); got != 2 {
			t.Errorf("search --method %s printed %d matches, want 2:\n%s", method, got, out)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	if err := setupLogger("debug"); err != nil {
		t.Errorf("setupLogger(debug) = %v", err)
	}
	if err := setupLogger("loud"); err == nil {
		t.Error("setupLogger(loud) expected an error")
	}
}
