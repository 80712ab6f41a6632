package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// selectionStrategy narrows the search to LLM-selected documents: each
// selected file_id names a partition, partitions are searched at the full
// limit, and the union is merged by score.
type selectionStrategy struct {
	searcher Searcher
	selector DocumentSelector
	limit    int
	logger   *zap.Logger
}

func (s *selectionStrategy) Search(ctx context.Context, req Request) ([]domain.SearchResult, error) {
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

	perPartition, err := s.searcher.SearchByPartition(ctx, req.Embedding, selected, s.limit)
	if err != nil {
		return nil, err
	}

	merged := mergeByScore(flatten(perPartition), s.limit)
	s.logger.Debug("selection search completed",
		zap.Int("documents", len(selected)),
		zap.Int("results", len(merged)),
	)
	return merged, nil
}
