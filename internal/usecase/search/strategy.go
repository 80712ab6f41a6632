// Package search implements the retrieval strategies: a direct vector
// search, a search scoped to LLM-selected documents, and a scoped search
// further constrained by LLM-extracted metadata filters.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// Request carries one search invocation. Embedding is the query vector;
// UserQuery is the raw text, required by the selection strategies.
// Partitions and FilterExpr are optional manual scope narrowing.
type Request struct {
	Embedding  []float32
	UserQuery  string
	Partitions []string
	FilterExpr string
}

// Strategy executes one retrieval flavor. Results are ordered by descending
// score and bounded by the configured limit.
type Strategy interface {
	Search(ctx context.Context, req Request) ([]domain.SearchResult, error)
}

// Deps bundles the collaborators a strategy may need. Selector and Filters
// are only required by the strategies that use them.
type Deps struct {
	Searcher Searcher
	Selector DocumentSelector
	Filters  FilterProvider
	Limit    int
	Logger   *zap.Logger
}

// NewStrategy builds the strategy for a search type. Missing collaborators
// for the requested type fail with ErrConfiguration.
func NewStrategy(t domain.SearchType, deps Deps) (Strategy, error) {
	if deps.Searcher == nil {
		return nil, fmt.Errorf("%w: searcher is required", domain.ErrConfiguration)
	}
	if deps.Limit <= 0 {
		return nil, fmt.Errorf("%w: search limit must be positive, got %d", domain.ErrConfiguration, deps.Limit)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	switch t {
	case domain.SearchSimple:
		return &simpleStrategy{searcher: deps.Searcher, limit: deps.Limit, logger: deps.Logger}, nil
	case domain.SearchWithSelection:
		if deps.Selector == nil {
			return nil, fmt.Errorf("%w: %s requires a document selector", domain.ErrConfiguration, t)
		}
		return &selectionStrategy{
			searcher: deps.Searcher,
			selector: deps.Selector,
			limit:    deps.Limit,
			logger:   deps.Logger,
		}, nil
	case domain.SearchWithSelectionAndMetadata:
		if deps.Selector == nil {
			return nil, fmt.Errorf("%w: %s requires a document selector", domain.ErrConfiguration, t)
		}
		if deps.Filters == nil {
			return nil, fmt.Errorf("%w: %s requires a metadata filter provider", domain.ErrConfiguration, t)
		}
		return &metadataStrategy{
			searcher: deps.Searcher,
			selector: deps.Selector,
			filters:  deps.Filters,
			limit:    deps.Limit,
			logger:   deps.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown search_type %q", domain.ErrConfiguration, t)
	}
}
