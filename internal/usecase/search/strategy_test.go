package search

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

func TestNewStrategy_UnknownTypeIsConfigurationError(t *testing.T) {
	_, err := NewStrategy(domain.SearchType("fuzzy"), Deps{Searcher: &mockSearcher{}, Limit: 3})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestNewStrategy_RequiresSearcherAndLimit(t *testing.T) {
	if _, err := NewStrategy(domain.SearchSimple, Deps{Limit: 3}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("missing searcher: err = %v", err)
	}
	if _, err := NewStrategy(domain.SearchSimple, Deps{Searcher: &mockSearcher{}}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("zero limit: err = %v", err)
	}
}

func TestNewStrategy_SelectionTypesRequireCollaborators(t *testing.T) {
	deps := Deps{Searcher: &mockSearcher{}, Limit: 3}

	if _, err := NewStrategy(domain.SearchWithSelection, deps); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("missing selector: err = %v", err)
	}

	deps.Selector = &mockSelector{}
	if _, err := NewStrategy(domain.SearchWithSelection, deps); err != nil {
		t.Fatalf("with selector: %v", err)
	}
	if _, err := NewStrategy(domain.SearchWithSelectionAndMetadata, deps); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("missing filter provider: err = %v", err)
	}

	deps.Filters = &mockFilters{}
	if _, err := NewStrategy(domain.SearchWithSelectionAndMetadata, deps); err != nil {
		t.Fatalf("full deps: %v", err)
	}
}
