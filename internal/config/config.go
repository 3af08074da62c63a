package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultProtVecK      = 3
	defaultSeq2VecK      = 6
	defaultVectorSize    = 100
	defaultSequenceCount = 2
	defaultMinLength     = 100
	defaultMaxLength     = 1000
)

type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	ProtVec   MethodConfig    `yaml:"protvec"`
	Seq2Vec   MethodConfig    `yaml:"seq2vec"`
	Model     ModelConfig     `yaml:"model"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
}

// GeneratorConfig controls synthetic sequence generation
type GeneratorConfig struct {
	Count     int    `yaml:"count"`
	MinLength int    `yaml:"min_length"`
	MaxLength int    `yaml:"max_length"`
	Seed      int64  `yaml:"seed"`
	FastaPath string `yaml:"fasta_path"`
	JSONPath  string `yaml:"json_path"`
}

// MethodConfig holds the k-mer length and embedding size of one pipeline
type MethodConfig struct {
	K          int `yaml:"k"`
	VectorSize int `yaml:"vector_size"`
	// protvec: the k-mer table, with its settings in "<model_path>.yaml".
	// seq2vec: the document model settings.
	ModelPath string `yaml:"model_path"`
}

// ModelConfig selects the external embedding model backend
type ModelConfig struct {
	// random, ollama or openai
	Backend   string `yaml:"backend"`
	Seed      int64  `yaml:"seed"`
	BatchSize int    `yaml:"batch_size"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Key     string `yaml:"key"`
}

type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	Compress      bool   `yaml:"compress"`
	EncryptionKey string `yaml:"encryption_key"`
	ExportPath    string `yaml:"export_path"`
}

// Ephemeral reports whether stored embeddings disappear when the process
// exits: an in-memory DB is only kept through an encrypted export.
func (s StorageConfig) Ephemeral() bool {
	return s.InMemory && s.EncryptionKey == ""
}

type DatabaseConfig struct {
	Enabled bool `yaml:"enabled"`
	// pgdriver or pq
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// DefaultConfig returns the settings used when no config file is present
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Count:     defaultSequenceCount,
			MinLength: defaultMinLength,
			MaxLength: defaultMaxLength,
			FastaPath: "random_sequences.fasta",
			JSONPath:  "random_sequences.json",
		},
		ProtVec: MethodConfig{
			K:          defaultProtVecK,
			VectorSize: defaultVectorSize,
			ModelPath:  "protvec_dna.model",
		},
		Seq2Vec: MethodConfig{
			K:          defaultSeq2VecK,
			VectorSize: defaultVectorSize,
			ModelPath:  "seq2vec_dna.model",
		},
		Model: ModelConfig{
			Backend:   "random",
			Seed:      1,
			BatchSize: 64,
		},
		EmbedLLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "nomic-embed-text",
		},
		Storage: StorageConfig{
			Path:       "./chromemdb",
			Collection: "dna_embeddings",
			ExportPath: "./chromemdb/dna_embeddings.chromem",
		},
		Database: DatabaseConfig{
			Driver: "pgdriver",
		},
	}
}

// LoadConfig reads path on top of DefaultConfig, so a partial file only
// overrides the keys it sets.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like LoadConfig but falls back to DefaultConfig
// when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if err := c.ProtVec.validate("protvec"); err != nil {
		return err
	}
	if err := c.Seq2Vec.validate("seq2vec"); err != nil {
		return err
	}
	if c.Generator.Count < 0 {
		return fmt.Errorf("generator: count must be >= 0, got %d", c.Generator.Count)
	}
	if c.Generator.MinLength < 0 || c.Generator.MinLength > c.Generator.MaxLength {
		return fmt.Errorf("generator: invalid length range [%d, %d]", c.Generator.MinLength, c.Generator.MaxLength)
	}
	switch c.Model.Backend {
	case "random", "ollama", "openai":
	default:
		return fmt.Errorf("model: unknown backend %q", c.Model.Backend)
	}
	switch c.Database.Driver {
	case "pgdriver", "pq":
	default:
		return fmt.Errorf("database: unknown driver %q", c.Database.Driver)
	}
	return nil
}

func (m MethodConfig) validate(name string) error {
	if m.K < 1 {
		return fmt.Errorf("%s: k must be >= 1, got %d", name, m.K)
	}
	if m.VectorSize < 1 {
		return fmt.Errorf("%s: vector_size must be >= 1, got %d", name, m.VectorSize)
	}
	return nil
}
