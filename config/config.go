// Package config builds the explicit runtime configuration object that the
// provider clients are constructed from. Values come from an optional
// config.yaml, overridden by environment variables (the .env file is loaded
// by the binaries before Load runs).
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig configures the embedding client and the completion engine.
// The API key is never read from the file, only from OPENAI_API_KEY.
type OpenAIConfig struct {
	APIKey             string `yaml:"-"`
	BaseURL            string `yaml:"base_url"`
	ChatModel          string `yaml:"chat_model"`
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
	EmbedTimeoutSecs   int    `yaml:"embed_timeout_secs"`
	ChatTimeoutSecs    int    `yaml:"chat_timeout_secs"`
}

type Config struct {
	ListenAddr  string       `yaml:"listen_addr"`
	DatabaseURL string       `yaml:"database_url"`
	IndexPath   string       `yaml:"index_path"`
	OpenAI      OpenAIConfig `yaml:"openai"`
}

// Load reads the config from path. A missing file is not an error: defaults
// plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr: ":8000",
		IndexPath:  "vector_index.gob",
		OpenAI: OpenAIConfig{
			ChatModel:          "gpt-3.5-turbo",
			EmbeddingModel:     "text-embedding-3-small",
			EmbeddingDimension: 1536,
			EmbedTimeoutSecs:   30,
			ChatTimeoutSecs:    120,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = def.IndexPath
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = def.OpenAI.ChatModel
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = def.OpenAI.EmbeddingModel
	}
	if cfg.OpenAI.EmbeddingDimension == 0 {
		cfg.OpenAI.EmbeddingDimension = def.OpenAI.EmbeddingDimension
	}
	if cfg.OpenAI.EmbedTimeoutSecs == 0 {
		cfg.OpenAI.EmbedTimeoutSecs = def.OpenAI.EmbedTimeoutSecs
	}
	if cfg.OpenAI.ChatTimeoutSecs == 0 {
		cfg.OpenAI.ChatTimeoutSecs = def.OpenAI.ChatTimeoutSecs
	}
}

func applyEnv(cfg *Config) {
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_CHAT_MODEL"); v != "" {
		cfg.OpenAI.ChatModel = v
	}
	if v := os.Getenv("OPENAI_EMBEDDING_MODEL"); v != "" {
		cfg.OpenAI.EmbeddingModel = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("INDEX_PATH"); v != "" {
		cfg.IndexPath = v
	}
}
