// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Chroma    ChromaConfig    `yaml:"chroma"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Search    SearchConfig    `yaml:"search"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document corpus and the QA history database.
type StorageConfig struct {
	CorpusDir     string `yaml:"corpus_dir"`
	HistoryDBPath string `yaml:"history_db_path"`
}

// ChromaConfig holds connection details for the Chroma vector store.
type ChromaConfig struct {
	URL         string `yaml:"url"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig holds settings for the OpenAI-compatible embeddings API.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig holds settings for the OpenAI-compatible chat completions API.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChunkingConfig holds the chunker's token budgets.
type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens"`
	MinTokens int `yaml:"min_tokens"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	// DefaultK is the number of sources retrieved per question.
	DefaultK int `yaml:"default_k"`
}

// WatchConfig holds corpus directory watch settings.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled"`
	DebounceMS int   `yaml:"debounce_ms"`
}

// EnabledOrDefault returns whether to watch the corpus; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Secrets holds credentials sourced from the environment (after .env loading).
// LLMAPIKey is required: without it no answer can ever be generated, so a
// missing key aborts startup. EmbeddingAPIKey may be empty for local
// inference servers that do not authenticate.
type Secrets struct {
	LLMAPIKey       string `env:"LLM_API_KEY,notEmpty"`
	EmbeddingAPIKey string `env:"EMBEDDING_API_KEY"`
}

// LoadSecrets parses credentials from the environment.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	return &s, nil
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.CorpusDir = expandPath(cfg.Storage.CorpusDir, configDir)
	cfg.Storage.HistoryDBPath = expandPath(cfg.Storage.HistoryDBPath, configDir)

	if cfg.Chunking.MinTokens >= cfg.Chunking.MaxTokens {
		return nil, fmt.Errorf("chunking: min_tokens (%d) must be less than max_tokens (%d)",
			cfg.Chunking.MinTokens, cfg.Chunking.MaxTokens)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
