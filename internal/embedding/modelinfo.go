package embedding

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelInfo records how a saved model was built, so a later query embeds
// with the same k, dimension and backend.
type ModelInfo struct {
	Method  string `yaml:"method"`
	Backend string `yaml:"backend"`
	// embedder model name, langchain backends only
	Model string `yaml:"model,omitempty"`
	Seed  int64  `yaml:"seed"`
	K     int    `yaml:"k"`
	Dim   int    `yaml:"dim"`
}

// InfoPath is where the ModelInfo of a token table saved at modelPath lives
func InfoPath(modelPath string) string {
	return modelPath + ".yaml"
}

func SaveModelInfo(path string, info ModelInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode model info: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model info: %w", err)
	}
	return nil
}

// LoadModelInfo reads a file written by SaveModelInfo. A missing file is
// returned as an error wrapping os.ErrNotExist.
func LoadModelInfo(path string) (*ModelInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info ModelInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse model info %s: %w", path, err)
	}
	if info.K < 1 || info.Dim < 1 {
		return nil, fmt.Errorf("model info %s: invalid k=%d dim=%d", path, info.K, info.Dim)
	}
	return &info, nil
}
