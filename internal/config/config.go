// Package config manages the user-wide settings file at
// ~/.config/engram/config.toml and the data directory layout under
// ~/.local/share/engram/.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/engram-ai/engram/internal/embed"
)

// Config holds user-wide settings.
type Config struct {
	// ChunkSize is the maximum memory chunk length in runes.
	ChunkSize int `toml:"chunk_size"`
	// TopK is the default number of query results.
	TopK int `toml:"top_k"`
	// ActiveModel selects an embedding model by id; empty means the
	// first configured model.
	ActiveModel string `toml:"active_model"`
	// DataDir overrides where the journal and vector database live.
	DataDir string        `toml:"data_dir"`
	Context ContextConfig `toml:"context"`
	Models  []embed.Model `toml:"models"`
}

// ContextConfig controls prompt context assembly.
type ContextConfig struct {
	MaxTokens int     `toml:"max_tokens"`
	MinScore  float64 `toml:"min_score"`
}

// EmbeddingModels returns the configured models in file order, so
// Config satisfies embed.Source.
func (c Config) EmbeddingModels() []embed.Model {
	return c.Models
}

// Default returns sensible defaults: a local Ollama embedder and no API
// keys.
func Default() Config {
	return Config{
		ChunkSize: 200,
		TopK:      5,
		Context: ContextConfig{
			MaxTokens: 2000,
			MinScore:  0.3,
		},
		Models: []embed.Model{
			{
				ID:     "local",
				Format: embed.FormatOllama,
				Name:   "nomic-embed-text",
			},
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "engram", "config.toml"), nil
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "engram"), nil
}

// JournalPath returns the path of the memory journal inside dataDir.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, "memories.json")
}

// DBPath returns the path of the vector database inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "vectors.db")
}

// Load reads the config file, applying defaults for missing values and
// letting environment variables override stored API keys. A missing
// file yields the defaults.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil // Defaults if we can't determine home dir.
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return cfg, fmt.Errorf("config: data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// applyEnv overrides per-format API keys from the environment, so keys
// never have to live in the config file.
func applyEnv(cfg *Config) {
	byFormat := map[string]string{
		embed.FormatOpenAI: os.Getenv("OPENAI_API_KEY"),
		embed.FormatGemini: os.Getenv("GEMINI_API_KEY"),
	}
	for i := range cfg.Models {
		if v := byFormat[cfg.Models[i].Format]; v != "" {
			cfg.Models[i].APIKey = v
		}
	}
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
