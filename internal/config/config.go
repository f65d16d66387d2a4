// Package config provides configuration loading and structs for the PeppeGPT server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding backends.
const (
	EmbeddingBackendOpenAI = "openai"
	EmbeddingBackendLocal  = "local"
	EmbeddingBackendMock   = "mock"
)

// Generation backends.
const (
	GenerationBackendOpenAI = "openai"
	GenerationBackendGemini = "gemini"
	GenerationBackendNone   = "none"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Subject    SubjectConfig    `yaml:"subject"`
	Content    ContentConfig    `yaml:"content"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Search     SearchConfig     `yaml:"search"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	CORS       CORSConfig       `yaml:"cors"`
	Sessions   SessionsConfig   `yaml:"sessions"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SubjectConfig identifies the person the CV content describes. Answer
// templates interpolate the name.
type SubjectConfig struct {
	Name string `yaml:"name"`
}

// ContentConfig holds paths to the CV content files. AIContentPath is
// preferred when both exist.
type ContentConfig struct {
	AIContentPath  string `yaml:"ai_content_path"`
	StructuredPath string `yaml:"structured_path"`
	WatchEnabled   bool   `yaml:"watch_enabled"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	Backend    string `yaml:"backend"` // openai | local | mock
	Model      string `yaml:"model"`   // openai model name
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// GenerationConfig selects and tunes the answer generation backend.
type GenerationConfig struct {
	Backend        string `yaml:"backend"` // openai | gemini | none
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the generation call timeout.
func (g *GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	MaxResults    int     `yaml:"max_results"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// RateLimitConfig holds per-client request limiting settings.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// Window returns the rate-limit window.
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// CORSConfig holds allowed origins for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SessionsConfig holds the conversation log settings.
type SessionsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Content.AIContentPath = expandPath(cfg.Content.AIContentPath, configDir)
	cfg.Content.StructuredPath = expandPath(cfg.Content.StructuredPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Sessions.DatabasePath = expandPath(cfg.Sessions.DatabasePath, configDir)

	return &cfg, nil
}

// Validate rejects unknown backend names early, before any service is built.
func (c *Config) Validate() error {
	switch c.Embedding.Backend {
	case EmbeddingBackendOpenAI, EmbeddingBackendLocal, EmbeddingBackendMock:
	default:
		return fmt.Errorf("unknown embedding backend: %q", c.Embedding.Backend)
	}
	switch c.Generation.Backend {
	case GenerationBackendOpenAI, GenerationBackendGemini, GenerationBackendNone:
	default:
		return fmt.Errorf("unknown generation backend: %q", c.Generation.Backend)
	}
	return nil
}

// OpenAIAPIKey returns the OpenAI key from the environment.
func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// GeminiAPIKey returns the Gemini key from the environment.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
// Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
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
