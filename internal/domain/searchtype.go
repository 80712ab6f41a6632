package domain

import "fmt"

// SearchType selects the search strategy used by the pipeline.
type SearchType string

const (
	// SearchSimple is a direct vector search over the full collection.
	SearchSimple SearchType = "simple"
	// SearchWithSelection narrows the search to LLM-selected documents.
	SearchWithSelection SearchType = "with_selection"
	// SearchWithSelectionAndMetadata adds LLM-extracted metadata filters on
	// top of document selection.
	SearchWithSelectionAndMetadata SearchType = "with_selection_and_metadata"
)

// ParseSearchType validates a configuration string.
func ParseSearchType(s string) (SearchType, error) {
	switch SearchType(s) {
	case SearchSimple, SearchWithSelection, SearchWithSelectionAndMetadata:
		return SearchType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown search_type %q", ErrConfiguration, s)
	}
}

// NeedsSelection reports whether the type runs the document selection step
// and therefore requires a user query and an LLM model.
func (t SearchType) NeedsSelection() bool {
	return t == SearchWithSelection || t == SearchWithSelectionAndMetadata
}
