package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/domain/filter"
)

// AllSummaries fetches every summary record from the summaries collection,
// in store order. An empty collection yields an empty slice, not an error.
func (s *Store) AllSummaries(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.querySummaries(ctx, "id >= 0")
}

// SummariesByFileIDs fetches only the summaries for the given documents.
func (s *Store) SummariesByFileIDs(ctx context.Context, fileIDs []string) ([]domain.DocumentSummary, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	return s.querySummaries(ctx, filter.OnlyFileIDs(fileIDs))
}

func (s *Store) querySummaries(ctx context.Context, expr string) ([]domain.DocumentSummary, error) {
	if s.conn == nil {
		return nil, domain.ErrNotConnected
	}

	rs, err := s.conn.Query(
		ctx, s.cfg.SummariesCollection, nil, expr,
		summaryOutputFields, client.WithLimit(summaryQueryLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", s.cfg.SummariesCollection, domain.ErrRetrieval, err)
	}

	summaries := parseSummaries(rs)
	s.logger.Debug("summaries retrieved",
		zap.Int("count", len(summaries)),
		zap.String("filter", expr),
	)
	return summaries, nil
}

func parseSummaries(rs client.ResultSet) []domain.DocumentSummary {
	n := resultSetLen(rs)
	summaries := make([]domain.DocumentSummary, 0, n)
	for i := 0; i < n; i++ {
		summaries = append(summaries, domain.DocumentSummary{
			FileID:        stringField(rs, "file_id", i),
			FileName:      stringField(rs, "file_name", i),
			TypeFile:      stringField(rs, "type_file", i),
			TotalPages:    intField(rs, "total_pages", i),
			TotalChapters: intField(rs, "total_chapters", i),
			TotalNumImage: intField(rs, "total_num_image", i),
			Text:          stringField(rs, "text", i),
		})
	}
	return summaries
}

func resultSetLen(rs client.ResultSet) int {
	for _, col := range rs {
		if col != nil {
			return col.Len()
		}
	}
	return 0
}

func intField(fields client.ResultSet, name string, idx int) int {
	col := fields.GetColumn(name)
	if col == nil {
		return 0
	}
	v, err := col.GetAsInt64(idx)
	if err != nil {
		return 0
	}
	return int(v)
}
