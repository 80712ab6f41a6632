package domain

// SearchResult is one matched chunk from a similarity search, transient per
// call and never persisted.
type SearchResult struct {
	ID       int64
	Score    float32
	Text     string
	FileID   string
	FileName string
	SourceID string
	Pages    string
	Chapters string
	TypeFile string
}
