package search

import (
	"sort"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// mergeByScore orders results by descending score and truncates to limit.
// The sort is stable so ties keep their arrival order.
func mergeByScore(results []domain.SearchResult, limit int) []domain.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// flatten concatenates per-partition result lists.
func flatten(perPartition [][]domain.SearchResult) []domain.SearchResult {
	var total int
	for _, p := range perPartition {
		total += len(p)
	}
	flat := make([]domain.SearchResult, 0, total)
	for _, p := range perPartition {
		flat = append(flat, p...)
	}
	return flat
}
