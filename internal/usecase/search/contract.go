package search

import (
	"context"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// Searcher runs vector searches against the documents collection.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int, partitions []string, expr string) ([]domain.SearchResult, error)
	SearchByPartition(ctx context.Context, vector []float32, fileIDs []string, limitPerPartition int) ([][]domain.SearchResult, error)
}

// DocumentSelector picks the documents relevant to a query.
type DocumentSelector interface {
	Select(ctx context.Context, userQuery string) ([]string, error)
}

// FilterProvider compiles per-document metadata filter expressions.
type FilterProvider interface {
	Filters(ctx context.Context, userQuery string, fileIDs []string) ([]domain.DocumentFilter, error)
}
