package config

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.CorpusDir == "" {
		cfg.Storage.CorpusDir = "/usr/local/var/kotae/data/raw_documents"
	}
	if cfg.Storage.HistoryDBPath == "" {
		cfg.Storage.HistoryDBPath = "/usr/local/var/kotae/data/db/history.db"
	}
	if cfg.Chroma.URL == "" {
		cfg.Chroma.URL = "http://localhost:8000"
	}
	if cfg.Chroma.Collection == "" {
		cfg.Chroma.Collection = "rag_docs"
	}
	if cfg.Chroma.TimeoutSecs == 0 {
		cfg.Chroma.TimeoutSecs = 15
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "google/gemini-2.5-flash"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	if cfg.Chunking.MaxTokens == 0 {
		cfg.Chunking.MaxTokens = 500
	}
	if cfg.Chunking.MinTokens == 0 {
		cfg.Chunking.MinTokens = 300
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 4
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
