package domain

// ExtractedMetadata holds per-document constraints extracted from a user
// query by the LLM. A nil slice means "no constraint" — an empty slice would
// mean "match nothing" and is never produced by the extractor.
type ExtractedMetadata struct {
	Pages       []int
	Chapters    []string
	SearchImage bool
	NumImage    []int
	TypeFile    string
}

// DocumentFilter pairs a document id with its compiled store filter
// expression.
type DocumentFilter struct {
	FileID string
	Expr   string
}
