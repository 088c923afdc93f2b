// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Documents DocumentsConfig `yaml:"documents"`
	Store     StoreConfig     `yaml:"store"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	AI        AIConfig        `yaml:"ai"`
	Query     QueryConfig     `yaml:"query"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DocumentsConfig locates the source document directory.
type DocumentsConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig locates the persistent vector store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ChunkingConfig controls text segmentation.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`

	overlapSet bool
}

// UnmarshalYAML tracks key presence so an explicit `overlap: 0` is
// distinguishable from an absent key and is not overwritten by the
// default.
func (c *ChunkingConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Size    int  `yaml:"size"`
		Overlap *int `yaml:"overlap"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Size = raw.Size
	if raw.Overlap != nil {
		c.Overlap = *raw.Overlap
		c.overlapSet = true
	}
	return nil
}

// AIConfig configures the embedding and generation backends.
type AIConfig struct {
	EmbeddingHost        string   `yaml:"embedding_host"`
	EmbeddingModel       string   `yaml:"embedding_model"`
	GenerationHost       string   `yaml:"generation_host"`
	GenerationModels     []string `yaml:"generation_models"`
	GenerationTimeoutSec int      `yaml:"generation_timeout_sec"`
}

// QueryConfig controls retrieval and answer generation.
type QueryConfig struct {
	NResults       int     `yaml:"n_results"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	MaxSourceChars int     `yaml:"max_source_chars"`

	temperatureSet bool
}

// UnmarshalYAML tracks key presence: temperature 0 selects deterministic
// sampling and must survive defaulting.
func (c *QueryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		NResults       int      `yaml:"n_results"`
		Temperature    *float64 `yaml:"temperature"`
		MaxTokens      int      `yaml:"max_tokens"`
		MaxSourceChars int      `yaml:"max_source_chars"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.NResults = raw.NResults
	c.MaxTokens = raw.MaxTokens
	c.MaxSourceChars = raw.MaxSourceChars
	if raw.Temperature != nil {
		c.Temperature = *raw.Temperature
		c.temperatureSet = true
	}
	return nil
}

// IndexingConfig controls the ingestion pipeline.
type IndexingConfig struct {
	BatchSize     int `yaml:"batch_size"`
	PoolSize      int `yaml:"pool_size"`
	MaxRetries    int `yaml:"max_retries"`
	RetryDelaySec int `yaml:"retry_delay_sec"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults apply. Values of the form ${VAR} are substituted from
// the environment before parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Documents.Path == "" {
		c.Documents.Path = "documents"
	}
	if c.Store.Path == "" {
		c.Store.Path = "vectorstore"
	}
	if c.Chunking.Size <= 0 {
		c.Chunking.Size = 500
	}
	if c.Chunking.Overlap <= 0 && !c.Chunking.overlapSet {
		c.Chunking.Overlap = 50
	}
	if c.AI.EmbeddingHost == "" {
		c.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = "embeddinggemma"
	}
	if c.AI.GenerationHost == "" {
		c.AI.GenerationHost = c.AI.EmbeddingHost
	}
	if len(c.AI.GenerationModels) == 0 {
		c.AI.GenerationModels = []string{"mistral", "qwen2.5:3b"}
	}
	if c.AI.GenerationTimeoutSec <= 0 {
		c.AI.GenerationTimeoutSec = 120
	}
	if c.Query.NResults <= 0 {
		c.Query.NResults = 5
	}
	if c.Query.Temperature == 0 && !c.Query.temperatureSet {
		c.Query.Temperature = 0.2
	}
	if c.Query.MaxTokens <= 0 {
		c.Query.MaxTokens = 300
	}
	if c.Query.MaxSourceChars <= 0 {
		c.Query.MaxSourceChars = 2500
	}
	if c.Indexing.BatchSize <= 0 {
		c.Indexing.BatchSize = 32
	}
	if c.Indexing.MaxRetries <= 0 {
		c.Indexing.MaxRetries = 3
	}
	if c.Indexing.RetryDelaySec <= 0 {
		c.Indexing.RetryDelaySec = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
// Validation is eager: a bad value fails here, before any work starts.
func (c *Config) Validate() error {
	if c.Documents.Path == "" {
		return fmt.Errorf("documents.path is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be smaller than chunking.size, got %d >= %d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.AI.EmbeddingModel == "" {
		return fmt.Errorf("ai.embedding_model is required")
	}
	if c.Query.NResults <= 0 {
		return fmt.Errorf("query.n_results must be positive, got %d", c.Query.NResults)
	}
	if c.Query.Temperature < 0 || c.Query.Temperature > 1 {
		return fmt.Errorf("query.temperature must be in [0, 1], got %g", c.Query.Temperature)
	}
	if c.Query.MaxTokens <= 0 {
		return fmt.Errorf("query.max_tokens must be positive, got %d", c.Query.MaxTokens)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
