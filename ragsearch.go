// Package ragsearch provides document retrieval for RAG pipelines over a
// Milvus vector store. Three strategies are available: a direct vector
// search, a search scoped to LLM-selected documents, and a scoped search
// further constrained by LLM-extracted metadata filters.
//
//	pipe, err := ragsearch.Open(ctx,
//	    ragsearch.WithMilvus("https://example.zillizcloud.com", token),
//	    ragsearch.WithSearchType("with_selection"),
//	    ragsearch.WithLLM(apiKey, "", "gpt-4o-mini"),
//	    ragsearch.WithEmbedding(apiKey, "", "text-embedding-3-small", 1536),
//	)
//	defer pipe.Close(ctx)
//	results, err := pipe.Search(ctx, ragsearch.Query{Text: "how to install"})
package ragsearch

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/repository/milvus"
	"github.com/kailas-cloud/ragsearch/internal/transport/openai"
	metadatauc "github.com/kailas-cloud/ragsearch/internal/usecase/metadata"
	searchuc "github.com/kailas-cloud/ragsearch/internal/usecase/search"
	selectionuc "github.com/kailas-cloud/ragsearch/internal/usecase/selection"
)

// Sentinel errors, matchable with errors.Is on anything the Pipeline returns.
var (
	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = domain.ErrConfiguration
	// ErrRetrieval marks a vector store failure.
	ErrRetrieval = domain.ErrRetrieval
	// ErrLLMCall marks an LLM provider failure.
	ErrLLMCall = domain.ErrLLMCall
	// ErrMetadataParse marks an unparseable metadata extraction reply.
	ErrMetadataParse = domain.ErrMetadataParse
)

const (
	defaultPort        = 19530
	defaultLimit       = 10
	defaultMaxTokens   = 500
	defaultTemperature = 0.2
)

// Pipeline is the retrieval entry point. It owns one Milvus connection:
// Open connects, Close releases. A Pipeline is safe for concurrent Search
// calls.
type Pipeline struct {
	store    *milvus.Store
	strategy searchuc.Strategy
	selector *selectionuc.Service
	embedder *openai.Embedder
	logger   *zap.Logger
}

// Open validates the configuration, connects to the vector store and wires
// the configured strategy. Every error path leaves no open connection
// behind.
func Open(ctx context.Context, opts ...Option) (*Pipeline, error) {
	cfg := &pipelineConfig{
		dbName:               "default",
		documentsCollection:  "documents",
		summariesCollection:  "summaries",
		searchType:           string(domain.SearchSimple),
		limit:                defaultLimit,
		chooserMaxTokens:     defaultMaxTokens,
		chooserTemperature:   defaultTemperature,
		extractorMaxTokens:   defaultMaxTokens,
		extractorTemperature: defaultTemperature,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.port == 0 {
		cfg.port = defaultPort
	}

	searchType, err := domain.ParseSearchType(cfg.searchType)
	if err != nil {
		return nil, err
	}
	if cfg.uri == "" && cfg.host == "" {
		return nil, fmt.Errorf("%w: milvus uri or host is required", domain.ErrConfiguration)
	}
	if cfg.limit <= 0 {
		return nil, fmt.Errorf("%w: search limit must be positive, got %d", domain.ErrConfiguration, cfg.limit)
	}
	if searchType.NeedsSelection() && cfg.llmAPIKey == "" {
		return nil, fmt.Errorf("%w: %s requires an LLM api key", domain.ErrConfiguration, searchType)
	}

	store := milvus.NewStore(milvus.Config{
		URI:                 cfg.uri,
		Host:                cfg.host,
		Port:                strconv.Itoa(cfg.port),
		Token:               cfg.token,
		Username:            cfg.username,
		Password:            cfg.password,
		DBName:              cfg.dbName,
		DocumentsCollection: cfg.documentsCollection,
		SummariesCollection: cfg.summariesCollection,
	}, cfg.logger)

	if err := store.Connect(ctx); err != nil {
		return nil, err
	}

	strategy, selector, err := wireStrategy(searchType, store, cfg)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	p := &Pipeline{store: store, strategy: strategy, selector: selector, logger: cfg.logger}
	if cfg.embeddingAPIKey != "" {
		p.embedder = openai.NewEmbedder(&openai.EmbedderConfig{
			APIKey:     cfg.embeddingAPIKey,
			BaseURL:    cfg.embeddingBaseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.embeddingDimensions,
			Logger:     cfg.logger,
		})
	}
	return p, nil
}

func wireStrategy(
	t domain.SearchType, store *milvus.Store, cfg *pipelineConfig,
) (searchuc.Strategy, *selectionuc.Service, error) {
	deps := searchuc.Deps{
		Searcher: store,
		Limit:    cfg.limit,
		Logger:   cfg.logger,
	}

	var selector *selectionuc.Service
	if t.NeedsSelection() {
		chooserModel := openai.NewTextModel(&openai.TextModelConfig{
			APIKey:    cfg.llmAPIKey,
			BaseURL:   cfg.llmBaseURL,
			Model:     cfg.llmModel,
			Operation: "chooser",
			Logger:    cfg.logger,
		})
		chooser := selectionuc.NewChooser(chooserModel, cfg.chooserMaxTokens, cfg.chooserTemperature, cfg.logger)
		selector = selectionuc.New(store, chooser, cfg.logger)
		deps.Selector = selector
	}
	if t == domain.SearchWithSelectionAndMetadata {
		extractorModel := openai.NewTextModel(&openai.TextModelConfig{
			APIKey:    cfg.llmAPIKey,
			BaseURL:   cfg.llmBaseURL,
			Model:     cfg.llmModel,
			Operation: "extractor",
			Logger:    cfg.logger,
		})
		extractor := metadatauc.NewExtractor(extractorModel, cfg.extractorMaxTokens, cfg.extractorTemperature, cfg.logger)
		deps.Filters = metadatauc.New(store, extractor, cfg.logger)
	}

	strategy, err := searchuc.NewStrategy(t, deps)
	if err != nil {
		return nil, nil, err
	}
	return strategy, selector, nil
}

// Query is one search invocation. Text is embedded automatically when
// Embedding is empty; the selection strategies also read it as the user
// query for document selection.
type Query struct {
	Text       string
	Embedding  []float32
	Partitions []string
	Filter     string
}

// Result is one scored chunk.
type Result struct {
	ID       int64
	Score    float32
	Text     string
	FileID   string
	FileName string
	SourceID string
	Pages    string
	Chapters string
	TypeFile string
}

// Search runs the configured strategy. Results are ordered by descending
// score and bounded by the configured limit.
func (p *Pipeline) Search(ctx context.Context, q Query) ([]Result, error) {
	embedding := q.Embedding
	if len(embedding) == 0 {
		if q.Text == "" {
			return nil, fmt.Errorf("%w: query text or embedding is required", domain.ErrConfiguration)
		}
		if p.embedder == nil {
			return nil, fmt.Errorf("%w: no embedding provider configured, supply a precomputed embedding", domain.ErrConfiguration)
		}
		var err error
		embedding, err = p.embedder.Embed(ctx, q.Text)
		if err != nil {
			return nil, err
		}
	}

	results, err := p.strategy.Search(ctx, searchuc.Request{
		Embedding:  embedding,
		UserQuery:  q.Text,
		Partitions: q.Partitions,
		FilterExpr: q.Filter,
	})
	if err != nil {
		return nil, err
	}
	return convertResults(results), nil
}

// DocumentSummary is one catalogue entry of the summaries collection.
type DocumentSummary struct {
	FileID        string
	FileName      string
	TypeFile      string
	TotalPages    int
	TotalChapters int
	TotalImages   int
	Text          string
}

// SelectDocuments runs only the document selection step and returns the
// chosen file ids together with their summary records. Available when the
// pipeline was opened with a selection search type.
func (p *Pipeline) SelectDocuments(ctx context.Context, query string) ([]string, []DocumentSummary, error) {
	if p.selector == nil {
		return nil, nil, fmt.Errorf("%w: document selection requires search type %q or %q",
			domain.ErrConfiguration, domain.SearchWithSelection, domain.SearchWithSelectionAndMetadata)
	}
	if query == "" {
		return nil, nil, fmt.Errorf("%w: query text is required for document selection", domain.ErrConfiguration)
	}

	ids, picked, err := p.selector.SelectSummaries(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	summaries := make([]DocumentSummary, len(picked))
	for i, s := range picked {
		summaries[i] = DocumentSummary{
			FileID:        s.FileID,
			FileName:      s.FileName,
			TypeFile:      s.TypeFile,
			TotalPages:    s.TotalPages,
			TotalChapters: s.TotalChapters,
			TotalImages:   s.TotalNumImage,
			Text:          s.Text,
		}
	}
	return ids, summaries, nil
}

// Ping checks vector store reachability.
func (p *Pipeline) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// Close releases the store connection. Safe to call more than once.
func (p *Pipeline) Close(ctx context.Context) error {
	return p.store.Close(ctx)
}

func convertResults(in []domain.SearchResult) []Result {
	out := make([]Result, len(in))
	for i, r := range in {
		out[i] = Result{
			ID:       r.ID,
			Score:    r.Score,
			Text:     r.Text,
			FileID:   r.FileID,
			FileName: r.FileName,
			SourceID: r.SourceID,
			Pages:    r.Pages,
			Chapters: r.Chapters,
			TypeFile: r.TypeFile,
		}
	}
	return out
}
