package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// Search runs one similarity search against the documents collection,
// optionally scoped to partitions and restricted by a filter expression.
// Results come back in store order: descending score, ties broken by the
// store.
func (s *Store) Search(
	ctx context.Context, vector []float32, limit int,
	partitions []string, expr string,
) ([]domain.SearchResult, error) {
	if s.conn == nil {
		return nil, domain.ErrNotConnected
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(searchNProbe)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}

	raw, err := s.conn.Search(
		ctx, s.cfg.DocumentsCollection, partitions, expr,
		documentOutputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		vectorField, entity.COSINE, limit, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w: %w", s.cfg.DocumentsCollection, domain.ErrRetrieval, err)
	}

	var results []domain.SearchResult
	for _, rs := range raw {
		parsed, err := parseSearchResult(rs)
		if err != nil {
			return nil, err
		}
		results = append(results, parsed...)
	}

	s.logger.Debug("milvus search completed",
		zap.Int("results", len(results)),
		zap.Int("limit", limit),
		zap.Strings("partitions", partitions),
		zap.String("filter", expr),
	)
	return results, nil
}

// SearchByPartition issues one search per file_id-named partition and returns
// the raw per-partition lists for the caller to merge. Partition searches run
// concurrently; the caller's merge is by score, so call order is irrelevant
// to the final output.
func (s *Store) SearchByPartition(
	ctx context.Context, vector []float32, fileIDs []string, limitPerPartition int,
) ([][]domain.SearchResult, error) {
	if s.conn == nil {
		return nil, domain.ErrNotConnected
	}

	perPartition := make([][]domain.SearchResult, len(fileIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, fileID := range fileIDs {
		i, fileID := i, fileID
		g.Go(func() error {
			results, err := s.Search(gctx, vector, limitPerPartition, []string{fileID}, "")
			if err != nil {
				return fmt.Errorf("partition %s: %w", fileID, err)
			}
			perPartition[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return perPartition, nil
}

// parseSearchResult flattens one SDK result set into domain results.
func parseSearchResult(rs client.SearchResult) ([]domain.SearchResult, error) {
	if rs.Err != nil {
		return nil, fmt.Errorf("search result: %w: %w", domain.ErrRetrieval, rs.Err)
	}
	if rs.ResultCount == 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		r := domain.SearchResult{Score: rs.Scores[i]}
		if rs.IDs != nil {
			id, err := rs.IDs.GetAsInt64(i)
			if err != nil {
				return nil, fmt.Errorf("parse result id: %w", err)
			}
			r.ID = id
		}
		r.Text = stringField(rs.Fields, "text", i)
		r.FileID = stringField(rs.Fields, "file_id", i)
		r.FileName = stringField(rs.Fields, "file_name", i)
		r.SourceID = stringField(rs.Fields, "source_id", i)
		r.Pages = stringField(rs.Fields, "pages", i)
		r.Chapters = stringField(rs.Fields, "chapters", i)
		r.TypeFile = stringField(rs.Fields, "type_file", i)
		results = append(results, r)
	}
	return results, nil
}

// stringField reads a varchar column value, tolerating absent columns.
func stringField(fields client.ResultSet, name string, idx int) string {
	col := fields.GetColumn(name)
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(idx)
	if err != nil {
		return ""
	}
	return v
}
