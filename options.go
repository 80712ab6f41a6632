package ragsearch

import "go.uber.org/zap"

// Option configures the Pipeline.
type Option interface {
	apply(*pipelineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*pipelineConfig)

func (f optionFunc) apply(c *pipelineConfig) { f(c) }

type pipelineConfig struct {
	uri      string
	host     string
	port     int
	token    string
	username string
	password string
	dbName   string

	documentsCollection string
	summariesCollection string

	searchType string
	limit      int

	llmAPIKey  string
	llmBaseURL string
	llmModel   string

	chooserMaxTokens     int
	chooserTemperature   float32
	extractorMaxTokens   int
	extractorTemperature float32

	embeddingAPIKey     string
	embeddingBaseURL    string
	embeddingModel      string
	embeddingDimensions int

	logger *zap.Logger
}

// WithMilvus configures a URI-based Milvus connection (Zilliz Cloud style).
func WithMilvus(uri, token string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.uri = uri
		c.token = token
	})
}

// WithMilvusHost configures a host/port Milvus connection. Port 0 means the
// default 19530.
func WithMilvusHost(host string, port int) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.host = host
		c.port = port
	})
}

// WithMilvusCredentials sets username/password authentication.
func WithMilvusCredentials(username, password string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.username = username
		c.password = password
	})
}

// WithDatabase selects the Milvus database. Defaults to "default".
func WithDatabase(name string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.dbName = name
	})
}

// WithCollections names the documents and summaries collections.
// Defaults: "documents" and "summaries".
func WithCollections(documents, summaries string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.documentsCollection = documents
		c.summariesCollection = summaries
	})
}

// WithSearchType selects the strategy: "simple", "with_selection" or
// "with_selection_and_metadata". Defaults to "simple".
func WithSearchType(t string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.searchType = t
	})
}

// WithSearchLimit bounds the merged result count. Defaults to 10.
func WithSearchLimit(n int) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.limit = n
	})
}

// WithLLM configures the text model used by the selection strategies.
// baseURL may be empty for the provider default.
func WithLLM(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.llmAPIKey = apiKey
		c.llmBaseURL = baseURL
		c.llmModel = model
	})
}

// WithChooserSampling tunes the document chooser prompt.
// Defaults: 500 tokens, temperature 0.2.
func WithChooserSampling(maxTokens int, temperature float32) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.chooserMaxTokens = maxTokens
		c.chooserTemperature = temperature
	})
}

// WithExtractorSampling tunes the metadata extraction prompt.
// Defaults: 500 tokens, temperature 0.2.
func WithExtractorSampling(maxTokens int, temperature float32) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.extractorMaxTokens = maxTokens
		c.extractorTemperature = temperature
	})
}

// WithEmbedding configures the query embedder so Search accepts plain text.
// Without it, callers must supply precomputed embeddings.
func WithEmbedding(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.embeddingAPIKey = apiKey
		c.embeddingBaseURL = baseURL
		c.embeddingModel = model
		c.embeddingDimensions = dimensions
	})
}

// WithLogger enables structured logging for pipeline operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *pipelineConfig) {
		c.logger = l
	})
}
