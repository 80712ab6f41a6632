// Package selection implements LLM-assisted document pre-selection:
// summaries are rendered into a markdown catalogue, an LLM picks the
// relevant entries, and the reply is validated against the catalogue.
package selection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// Service orchestrates summaries -> markdown -> LLM chooser -> validated ids.
type Service struct {
	summaries SummarySource
	chooser   *Chooser
	logger    *zap.Logger
}

// New creates a document selection service.
func New(summaries SummarySource, chooser *Chooser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{summaries: summaries, chooser: chooser, logger: logger}
}

// Select returns the file_ids of documents relevant to the query. An empty
// summary store yields an empty selection. Zero valid ids after validation
// also yields an empty selection; strategies translate that into an empty
// result set.
func (s *Service) Select(ctx context.Context, userQuery string) ([]string, error) {
	ids, _, err := s.selectWithSummaries(ctx, userQuery)
	return ids, err
}

// SelectSummaries returns the selected ids together with their summary
// records, saving the metadata path a second catalogue fetch.
func (s *Service) SelectSummaries(ctx context.Context, userQuery string) ([]string, []domain.DocumentSummary, error) {
	return s.selectWithSummaries(ctx, userQuery)
}

func (s *Service) selectWithSummaries(
	ctx context.Context, userQuery string,
) ([]string, []domain.DocumentSummary, error) {
	summaries, err := s.summaries.AllSummaries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve summaries: %w", err)
	}
	if len(summaries) == 0 {
		s.logger.Warn("summary collection is empty, nothing to select")
		return nil, nil, nil
	}

	markdown := domain.CatalogueMarkdown(summaries)
	known := domain.KnownFileIDs(summaries)

	selected, err := s.chooser.Choose(ctx, markdown, userQuery, known)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("documents selected",
		zap.Int("available", len(summaries)),
		zap.Int("selected", len(selected)),
		zap.Strings("file_ids", selected),
	)

	if len(selected) == 0 {
		return nil, nil, nil
	}

	picked := make([]domain.DocumentSummary, 0, len(selected))
	selectedSet := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		selectedSet[id] = struct{}{}
	}
	for _, sum := range summaries {
		if _, ok := selectedSet[sum.FileID]; ok {
			picked = append(picked, sum)
		}
	}
	return selected, picked, nil
}
