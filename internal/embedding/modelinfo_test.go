package embedding

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestModelInfoRoundTrip(t *testing.T) {
	path := InfoPath(filepath.Join(t.TempDir(), "protvec_dna.model"))
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("InfoPath() = %s, want a .yaml sidecar", path)
	}

	want := ModelInfo{Method: "protvec", Backend: "random", Seed: 7, K: 4, Dim: 16}
	if err := SaveModelInfo(path, want); err != nil {
		t.Fatalf("SaveModelInfo() error = %v", err)
	}
	got, err := LoadModelInfo(path)
	if err != nil {
		t.Fatalf("LoadModelInfo() error = %v", err)
	}
	if *got != want {
		t.Errorf("LoadModelInfo() = %+v, want %+v", *got, want)
	}
}

func TestLoadModelInfoErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadModelInfo(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadModelInfo(missing) error = %v, want os.ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("method: protvec\nk: 0\ndim: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModelInfo(bad); err == nil {
		t.Error("LoadModelInfo(k=0) expected an error")
	}
}
