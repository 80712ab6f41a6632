package search

import (
	"context"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// mockSearcher implements Searcher, recording the last call arguments.
type mockSearcher struct {
	results      []domain.SearchResult
	perPartition [][]domain.SearchResult
	err          error

	searchCalls    int
	partitionCalls int
	lastLimit      int
	lastPartitions []string
	lastExpr       string
	lastFileIDs    []string
	lastLimitPer   int
}

func (m *mockSearcher) Search(
	_ context.Context, _ []float32, limit int, partitions []string, expr string,
) ([]domain.SearchResult, error) {
	m.searchCalls++
	m.lastLimit = limit
	m.lastPartitions = partitions
	m.lastExpr = expr
	return m.results, m.err
}

func (m *mockSearcher) SearchByPartition(
	_ context.Context, _ []float32, fileIDs []string, limitPerPartition int,
) ([][]domain.SearchResult, error) {
	m.partitionCalls++
	m.lastFileIDs = fileIDs
	m.lastLimitPer = limitPerPartition
	return m.perPartition, m.err
}

// mockSelector implements DocumentSelector.
type mockSelector struct {
	ids   []string
	err   error
	calls int
}

func (m *mockSelector) Select(context.Context, string) ([]string, error) {
	m.calls++
	return m.ids, m.err
}

// mockFilters implements FilterProvider.
type mockFilters struct {
	filters []domain.DocumentFilter
	err     error
	calls   int
}

func (m *mockFilters) Filters(context.Context, string, []string) ([]domain.DocumentFilter, error) {
	m.calls++
	return m.filters, m.err
}

func scored(pairs ...float32) []domain.SearchResult {
	results := make([]domain.SearchResult, len(pairs))
	for i, score := range pairs {
		results[i] = domain.SearchResult{ID: int64(i + 1), Score: score}
	}
	return results
}
