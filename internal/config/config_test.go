package config

import (
	"errors"
	"os"
	"testing"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

func validConfig() Config {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Milvus: MilvusConfig{Host: "localhost"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Milvus.Port != "19530" {
		t.Errorf("expected Milvus port 19530, got %s", cfg.Milvus.Port)
	}
	if cfg.Milvus.DBName != "default" {
		t.Errorf("expected dbname default, got %s", cfg.Milvus.DBName)
	}
	if cfg.Milvus.DocumentsCollection != "documents" {
		t.Errorf("expected documents collection, got %s", cfg.Milvus.DocumentsCollection)
	}
	if cfg.Milvus.SummariesCollection != "summaries" {
		t.Errorf("expected summaries collection, got %s", cfg.Milvus.SummariesCollection)
	}
	if cfg.Search.Type != "simple" {
		t.Errorf("expected search type simple, got %s", cfg.Search.Type)
	}
	if cfg.Search.Limit != 10 {
		t.Errorf("expected search limit 10, got %d", cfg.Search.Limit)
	}
	if cfg.LLM.Chooser.MaxTokens != 500 {
		t.Errorf("expected chooser max_tokens 500, got %d", cfg.LLM.Chooser.MaxTokens)
	}
	if cfg.LLM.Extractor.Temperature != 0.2 {
		t.Errorf("expected extractor temperature 0.2, got %g", cfg.LLM.Extractor.Temperature)
	}
}

func TestApplyDefaults_EmbeddingInheritsLLMCredentials(t *testing.T) {
	cfg := Config{
		LLM: LLMConfig{APIKey: "sk-test", BaseURL: "https://llm.example.com/v1"},
	}
	cfg.ApplyDefaults()

	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("embedding api key not inherited: %q", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.BaseURL != "https://llm.example.com/v1" {
		t.Errorf("embedding base url not inherited: %q", cfg.Embedding.BaseURL)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownSearchType(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Type = "fuzzy"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown search type")
	}
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestValidate_SelectionRequiresLLMKey(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Type = string(domain.SearchWithSelection)
	cfg.LLM.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: selection search without llm.api_key")
	}

	cfg.LLM.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with llm.api_key set: %v", err)
	}
}

func TestValidate_SamplingBounds(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Chooser.MaxTokens = 50
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for chooser max_tokens below 100")
	}

	cfg = validConfig()
	cfg.LLM.Extractor.Temperature = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for extractor temperature above 1")
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("RAGSEARCH_TEST_TOKEN", "secret")
	defer os.Unsetenv("RAGSEARCH_TEST_TOKEN")

	in := []byte("token: ${RAGSEARCH_TEST_TOKEN}\nhost: ${RAGSEARCH_TEST_HOST:-milvus.local}\n")
	out := string(expandEnvVars(in))

	if out != "token: secret\nhost: milvus.local\n" {
		t.Fatalf("unexpected expansion: %q", out)
	}
}
