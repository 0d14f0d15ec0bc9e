package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.BatchSize != 32 {
		t.Errorf("expected BatchSize=32, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.MaxLines != 100 {
		t.Errorf("expected MaxLines=100, got %d", cfg.Index.MaxLines)
	}
	if cfg.Store.CollectionName != "code_repository" {
		t.Errorf("expected collection code_repository, got %s", cfg.Store.CollectionName)
	}
	if !cfg.Store.RecreateOnMismatch {
		t.Error("expected RecreateOnMismatch=true")
	}
	if cfg.LLM.Model != "codellama" || cfg.LLM.Port != 11434 {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %s", cfg.LLM.Timeout)
	}
	if len(cfg.Repositories) != 1 || cfg.Repositories[0] != "/repos" {
		t.Errorf("expected [/repos], got %v", cfg.Repositories)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
repositories:
  - /src/a
  - /src/b
qdrant:
  ignored: true
store:
  collection_name: other
llm:
  model: mistral
  timeout: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Repositories) != 2 || cfg.Repositories[1] != "/src/b" {
		t.Errorf("unexpected repositories %v", cfg.Repositories)
	}
	if cfg.Store.CollectionName != "other" {
		t.Errorf("expected collection other, got %s", cfg.Store.CollectionName)
	}
	if cfg.Store.URL != "qdrant" {
		t.Errorf("expected default store url to survive, got %s", cfg.Store.URL)
	}
	if cfg.LLM.Model != "mistral" {
		t.Errorf("expected model mistral, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.LLM.Timeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("repositories: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("index:\n  batch_size: 8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.BatchSize != 8 {
		t.Errorf("expected BatchSize=8, got %d", cfg.Index.BatchSize)
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".coderag"), 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".coderag", "config.yaml")
	if err := os.WriteFile(configPath, []byte("store:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected backend memory, got %s", cfg.Store.Backend)
	}
}

func TestLoadFromDirPrefersConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "coderag.yaml"), []byte("store:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(envPath, []byte("store:\n  backend: bolt\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", envPath)

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Backend != "bolt" {
		t.Errorf("expected backend bolt, got %s", cfg.Store.Backend)
	}
}

func TestLoadFromDirEmptyDirGivesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.CollectionName != "code_repository" {
		t.Errorf("expected default collection, got %s", cfg.Store.CollectionName)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.LLM.Timeout = 90 * time.Second
	cfg.Index.ContentAddressedIDs = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LLM.Timeout != 90*time.Second {
		t.Errorf("expected 90s, got %s", loaded.LLM.Timeout)
	}
	if !loaded.Index.ContentAddressedIDs {
		t.Error("expected content_addressed_ids to round trip")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, true},
		{"bolt without path", func(c *Config) { c.Store.Backend = "bolt"; c.Store.Path = "" }, true},
		{"mock without dimension", func(c *Config) { c.Embedding.Provider = "mock"; c.Embedding.Dimension = 0 }, true},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "gpt" }, true},
		{"zero batch", func(c *Config) { c.Index.BatchSize = 0 }, true},
		{"no collection", func(c *Config) { c.Store.CollectionName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
