package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/domain/filter"
)

// metadataStrategy runs document selection, compiles per-document metadata
// filters, and issues a single search with the OR-combined expression. The
// expression already scopes every clause by file_id, so one call covers the
// whole selection; the intermediate limit grows with the selection size and
// the merge truncates back down.
type metadataStrategy struct {
	searcher Searcher
	selector DocumentSelector
	filters  FilterProvider
	limit    int
	logger   *zap.Logger
}

func (s *metadataStrategy) Search(ctx context.Context, req Request) ([]domain.SearchResult, error) {
	if req.UserQuery == "" {
		return nil, fmt.Errorf("%w: user_query is required for document selection", domain.ErrConfiguration)
	}

	selected, err := s.selector.Select(ctx, req.UserQuery)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		s.logger.Warn("no documents selected, returning empty result set")
		return nil, nil
	}

	docFilters, err := s.filters.Filters(ctx, req.UserQuery, selected)
	if err != nil {
		return nil, err
	}

	expr := filter.And(s.combinedExpr(selected, docFilters), req.FilterExpr)

	// Each selected document may contribute up to limit results before the
	// final merge.
	results, err := s.searcher.Search(ctx, req.Embedding, s.limit*len(selected), selected, expr)
	if err != nil {
		return nil, err
	}

	merged := mergeByScore(results, s.limit)
	s.logger.Debug("metadata search completed",
		zap.Int("documents", len(selected)),
		zap.Int("filters", len(docFilters)),
		zap.Int("results", len(merged)),
		zap.String("filter", expr),
	)
	return merged, nil
}

// combinedExpr OR-joins the per-document clauses. A selected document the
// extractor produced no constraints for keeps a bare file_id clause so the
// selection is never silently narrowed.
func (s *metadataStrategy) combinedExpr(selected []string, docFilters []domain.DocumentFilter) string {
	exprByID := make(map[string]string, len(docFilters))
	for _, f := range docFilters {
		exprByID[f.FileID] = f.Expr
	}

	clauses := make([]string, 0, len(selected))
	for _, id := range selected {
		expr, ok := exprByID[id]
		if !ok {
			expr = filter.OnlyFileIDs([]string{id})
		}
		clauses = append(clauses, expr)
	}
	return filter.CombineClauses(clauses)
}
