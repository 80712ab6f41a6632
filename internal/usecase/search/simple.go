package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// simpleStrategy runs one direct vector search. Manual partitions and a
// manual filter expression pass straight through to the store.
type simpleStrategy struct {
	searcher Searcher
	limit    int
	logger   *zap.Logger
}

func (s *simpleStrategy) Search(ctx context.Context, req Request) ([]domain.SearchResult, error) {
	results, err := s.searcher.Search(ctx, req.Embedding, s.limit, req.Partitions, req.FilterExpr)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("simple search completed", zap.Int("results", len(results)))
	return mergeByScore(results, s.limit), nil
}
