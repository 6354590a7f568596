package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/engram-ai/engram/internal/embed"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	return home
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	setHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChunkSize != 200 || cfg.TopK != 5 {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Format != embed.FormatOllama {
		t.Errorf("models = %+v", cfg.Models)
	}
	if cfg.DataDir == "" {
		t.Error("data dir not defaulted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setHome(t)

	cfg := Default()
	cfg.ChunkSize = 99
	cfg.ActiveModel = "remote"
	cfg.Models = []embed.Model{
		{ID: "remote", Format: embed.FormatOpenAI, Name: "text-embedding-3-small", APIKey: "sk-stored"},
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ChunkSize != 99 || loaded.ActiveModel != "remote" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.Models) != 1 || loaded.Models[0].APIKey != "sk-stored" {
		t.Errorf("models = %+v", loaded.Models)
	}
}

func TestEnvOverridesAPIKeys(t *testing.T) {
	setHome(t)

	cfg := Default()
	cfg.Models = []embed.Model{
		{ID: "oa", Format: embed.FormatOpenAI, Name: "text-embedding-3-small", APIKey: "sk-old"},
		{ID: "gm", Format: embed.FormatGemini, Name: "text-embedding-004"},
		{ID: "local", Format: embed.FormatOllama, Name: "nomic-embed-text"},
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GEMINI_API_KEY", "gm-env")

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Models[0].APIKey != "sk-env" {
		t.Errorf("openai key = %q, want env override", loaded.Models[0].APIKey)
	}
	if loaded.Models[1].APIKey != "gm-env" {
		t.Errorf("gemini key = %q, want env override", loaded.Models[1].APIKey)
	}
	if loaded.Models[2].APIKey != "" {
		t.Errorf("ollama key = %q, want empty", loaded.Models[2].APIKey)
	}
}

func TestEmbeddingModelsOrderIsStable(t *testing.T) {
	cfg := Config{Models: []embed.Model{{ID: "a"}, {ID: "b"}}}

	models := cfg.EmbeddingModels()
	if len(models) != 2 || models[0].ID != "a" || models[1].ID != "b" {
		t.Errorf("models = %+v", models)
	}
}

func TestDataDirPaths(t *testing.T) {
	if got := JournalPath("/data"); got != filepath.Join("/data", "memories.json") {
		t.Errorf("journal path = %q", got)
	}
	if got := DBPath("/data"); got != filepath.Join("/data", "vectors.db") {
		t.Errorf("db path = %q", got)
	}
}

func TestSaveCreatesConfigDir(t *testing.T) {
	home := setHome(t)

	if err := Save(Default()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "engram", "config.toml")); err != nil {
		t.Errorf("config file missing: %v", err)
	}
}
