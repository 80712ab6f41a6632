package domain

import (
	"fmt"
	"strings"
)

// DocumentSummary is a document-level descriptive record from the summaries
// collection. It is produced during ingestion and read-only here.
type DocumentSummary struct {
	FileID        string
	FileName      string
	TypeFile      string
	TotalPages    int
	TotalChapters int
	TotalNumImage int
	Text          string
}

// Markdown renders the summary as a single catalogue entry readable by both
// humans and the selection LLM.
func (s DocumentSummary) Markdown() string {
	name := s.FileName
	if name == "" {
		name = "unnamed document"
	}
	desc := s.Text
	if desc == "" {
		desc = "No description available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", name)
	fmt.Fprintf(&b, "- **ID:** `%s`\n", s.FileID)
	fmt.Fprintf(&b, "- **Type:** %s\n", strings.ToUpper(s.TypeFile))
	fmt.Fprintf(&b, "- **Pages:** %d\n", s.TotalPages)
	fmt.Fprintf(&b, "- **Chapters:** %d\n", s.TotalChapters)
	fmt.Fprintf(&b, "- **Images:** %d\n\n", s.TotalNumImage)
	fmt.Fprintf(&b, "**Description:**\n%s\n", desc)
	return b.String()
}

// CatalogueMarkdown renders the full document catalogue in retrieval order,
// one block per summary separated by horizontal rules.
func CatalogueMarkdown(summaries []DocumentSummary) string {
	if len(summaries) == 0 {
		return "# Document Library\n\nNo documents available.\n"
	}

	parts := make([]string, 0, len(summaries)*2+3)
	parts = append(parts,
		"# Document Library\n",
		fmt.Sprintf("Total documents: **%d**\n", len(summaries)),
		"---\n",
	)
	for _, s := range summaries {
		parts = append(parts, s.Markdown(), "---\n")
	}
	return strings.Join(parts, "\n")
}

// KnownFileIDs returns the set of file_ids present in the summaries, used to
// validate LLM output against the catalogue actually shown to it.
func KnownFileIDs(summaries []DocumentSummary) map[string]struct{} {
	ids := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		if s.FileID != "" {
			ids[s.FileID] = struct{}{}
		}
	}
	return ids
}
