package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// Config holds the ragsearch service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// MilvusConfig holds vector store connection settings. URI takes precedence
// over Host/Port when both are set.
type MilvusConfig struct {
	URI                 string `yaml:"uri"`
	Host                string `yaml:"host"`
	Port                string `yaml:"port"`
	Token               string `yaml:"token"`
	Username            string `yaml:"username"`
	Password            string `yaml:"password"`
	DBName              string `yaml:"dbname"`
	DocumentsCollection string `yaml:"documents_collection"`
	SummariesCollection string `yaml:"summaries_collection"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	Type  string `yaml:"type"` // simple, with_selection, with_selection_and_metadata
	Limit int    `yaml:"limit"`
}

// SamplingConfig holds LLM sampling parameters for one prompt.
type SamplingConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// LLMConfig holds LLM provider settings for document selection and metadata
// extraction.
type LLMConfig struct {
	APIKey    string         `yaml:"api_key"`
	BaseURL   string         `yaml:"base_url"`
	Model     string         `yaml:"model"`
	Chooser   SamplingConfig `yaml:"chooser"`
	Extractor SamplingConfig `yaml:"extractor"`
}

// EmbeddingConfig holds query embedding settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// LLM-assisted strategies make two completion calls per request.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Milvus.Host == "" {
		c.Milvus.Host = "localhost"
	}
	if c.Milvus.Port == "" {
		c.Milvus.Port = "19530"
	}
	if c.Milvus.DBName == "" {
		c.Milvus.DBName = "default"
	}
	if c.Milvus.DocumentsCollection == "" {
		c.Milvus.DocumentsCollection = "documents"
	}
	if c.Milvus.SummariesCollection == "" {
		c.Milvus.SummariesCollection = "summaries"
	}
	if c.Search.Type == "" {
		c.Search.Type = string(domain.SearchSimple)
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 10
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	applySamplingDefaults(&c.LLM.Chooser)
	applySamplingDefaults(&c.LLM.Extractor)
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-ada-002"
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = c.LLM.APIKey
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}
}

func applySamplingDefaults(s *SamplingConfig) {
	if s.MaxTokens <= 0 {
		s.MaxTokens = 500
	}
	if s.Temperature <= 0 {
		s.Temperature = 0.2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Milvus.URI == "" && c.Milvus.Host == "" {
		return fmt.Errorf("milvus.uri or milvus.host is required")
	}

	searchType, err := domain.ParseSearchType(c.Search.Type)
	if err != nil {
		return fmt.Errorf("search.type: %w", err)
	}
	if c.Search.Limit < 1 || c.Search.Limit > 100 {
		return fmt.Errorf("search.limit must be between 1 and 100, got %d", c.Search.Limit)
	}
	if searchType.NeedsSelection() && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required for search type %q", searchType)
	}
	if err := validateSampling("llm.chooser", c.LLM.Chooser); err != nil {
		return err
	}
	if err := validateSampling("llm.extractor", c.LLM.Extractor); err != nil {
		return err
	}
	return nil
}

func validateSampling(section string, s SamplingConfig) error {
	if s.MaxTokens < 100 || s.MaxTokens > 2000 {
		return fmt.Errorf("%s.max_tokens must be between 100 and 2000, got %d", section, s.MaxTokens)
	}
	if s.Temperature < 0 || s.Temperature > 1 {
		return fmt.Errorf("%s.temperature must be between 0 and 1, got %g", section, s.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
