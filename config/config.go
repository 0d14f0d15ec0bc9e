package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "/config/config.yaml"

// Config holds all configuration for indexing and the query service.
type Config struct {
	Repositories []string        `yaml:"repositories"`
	Index        IndexConfig     `yaml:"index"`
	Embedding    EmbeddingConfig `yaml:"embedding"`
	Store        StoreConfig     `yaml:"store"`
	LLM          LLMConfig       `yaml:"llm"`
	Server       ServerConfig    `yaml:"server"`
	Logging      LoggingConfig   `yaml:"logging"`
}

// IndexConfig holds file selection and batching settings.
type IndexConfig struct {
	Extensions          []string `yaml:"extensions"`
	ExcludedDirs        []string `yaml:"excluded_dirs"`
	MaxLines            int      `yaml:"max_lines"`
	BatchSize           int      `yaml:"batch_size"`
	ContentAddressedIDs bool     `yaml:"content_addressed_ids"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "ollama", "openai", "gemini", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"` // mock provider only
	CacheSize int    `yaml:"cache_size"`
}

// StoreConfig selects and addresses the vector store.
type StoreConfig struct {
	Backend            string `yaml:"backend"` // "qdrant", "bolt", "memory"
	URL                string `yaml:"url"`
	Port               int    `yaml:"port"`
	CollectionName     string `yaml:"collection_name"`
	Path               string `yaml:"path"`
	RecreateOnMismatch bool   `yaml:"recreate_on_mismatch"`
}

// LLMConfig holds generation settings.
type LLMConfig struct {
	Provider      string        `yaml:"provider"` // "ollama", "gemini"
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Model         string        `yaml:"model"`
	Temperature   float64       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	ContextWindow int           `yaml:"context_window"`
	Timeout       time.Duration `yaml:"timeout"`
	APIKeyEnv     string        `yaml:"api_key_env"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	RateLimit   float64  `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst   int      `yaml:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Repositories: []string{"/repos"},
		Index: IndexConfig{
			Extensions:   []string{".py", ".java", ".js", ".ts", ".go", ".rb", ".cs", ".cpp", ".c", ".h"},
			ExcludedDirs: []string{"node_modules", "venv", ".git", "__pycache__", "build", "dist"},
			MaxLines:     100,
			BatchSize:    32,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			BaseURL:   "http://ollama:11434",
			Dimension: 768,
			CacheSize: 1000,
		},
		Store: StoreConfig{
			Backend:            "qdrant",
			URL:                "qdrant",
			Port:               6334,
			CollectionName:     "code_repository",
			Path:               "coderag.db",
			RecreateOnMismatch: true,
		},
		LLM: LLMConfig{
			Provider:      "ollama",
			Host:          "ollama",
			Port:          11434,
			Model:         "codellama",
			Temperature:   0.1,
			MaxTokens:     1024,
			ContextWindow: 2048,
			Timeout:       10 * time.Minute,
		},
		Server: ServerConfig{
			Addr:        "0.0.0.0:8000",
			RateBurst:   10,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads the file named by CONFIG_PATH, or DefaultPath.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

// LoadFromDir loads CONFIG_PATH when it is set. Otherwise it looks for
// coderag.yaml, then .coderag/config.yaml under dir, then DefaultPath.
func LoadFromDir(dir string) (*Config, error) {
	if os.Getenv("CONFIG_PATH") != "" {
		return LoadFromEnv()
	}

	path := filepath.Join(dir, "coderag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".coderag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return Load(DefaultPath)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.CollectionName == "" {
		errs = append(errs, errors.New("store.collection_name is required"))
	}
	switch c.Store.Backend {
	case "qdrant", "memory":
	case "bolt":
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the bolt backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}
	switch c.Embedding.Provider {
	case "ollama", "openai", "gemini":
	case "mock":
		if c.Embedding.Dimension <= 0 {
			errs = append(errs, errors.New("embedding.dimension must be positive for the mock provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider))
	}
	switch c.LLM.Provider {
	case "ollama", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", c.LLM.Provider))
	}
	if c.Index.BatchSize <= 0 {
		errs = append(errs, errors.New("index.batch_size must be positive"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// APIKey reads the named environment variable, if any.
func APIKey(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
