package metadata

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/domain/filter"
)

// Service compiles per-document filter expressions for a set of selected
// documents.
type Service struct {
	summaries SummarySource
	extractor *Extractor
	logger    *zap.Logger
}

// New creates a metadata filtering service.
func New(summaries SummarySource, extractor *Extractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{summaries: summaries, extractor: extractor, logger: logger}
}

// Filters returns one DocumentFilter per selected document the extractor
// produced constraints for, in the order ids were given. An unparseable LLM
// reply degrades to no filters: the caller searches the selected documents
// unconstrained rather than failing the request.
func (s *Service) Filters(ctx context.Context, userQuery string, fileIDs []string) ([]domain.DocumentFilter, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	summaries, err := s.summaries.SummariesByFileIDs(ctx, fileIDs)
	if err != nil {
		return nil, fmt.Errorf("retrieve summaries: %w", err)
	}
	if len(summaries) == 0 {
		s.logger.Warn("no summaries for selected documents", zap.Strings("file_ids", fileIDs))
		return nil, nil
	}

	markdown := domain.CatalogueMarkdown(summaries)

	extracted, err := s.extractor.Extract(ctx, userQuery, markdown, summaries)
	if err != nil {
		if errors.Is(err, domain.ErrMetadataParse) {
			s.logger.Warn("metadata extraction unparseable, searching without filters", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	filters := make([]domain.DocumentFilter, 0, len(extracted))
	for _, id := range fileIDs {
		md, ok := extracted[id]
		if !ok {
			continue
		}
		filters = append(filters, domain.DocumentFilter{
			FileID: id,
			Expr:   filter.ForDocument(id, md),
		})
	}

	s.logger.Info("document filters built",
		zap.Int("selected", len(fileIDs)),
		zap.Int("filtered", len(filters)),
	)
	return filters, nil
}
