// Package filter compiles extracted document metadata into Milvus boolean
// filter expressions. All functions are pure: same input, same string.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// ForDocument builds the filter expression for a single document. The
// expression always contains the `file_id == "<id>"` equality clause;
// present metadata fields add `and`-joined membership clauses. Absent fields
// contribute nothing — never a tautology the store would have to parse.
func ForDocument(fileID string, md domain.ExtractedMetadata) string {
	parts := []string{fmt.Sprintf("file_id == %q", fileID)}

	if len(md.Pages) > 0 {
		parts = append(parts, fmt.Sprintf("pages in [%s]", quoteInts(md.Pages)))
	}
	if len(md.Chapters) > 0 {
		parts = append(parts, fmt.Sprintf("chapters in [%s]", quoteStrings(md.Chapters)))
	}
	// search_image alone is advisory; it only matters paired with num_image.
	if len(md.NumImage) > 0 {
		parts = append(parts, fmt.Sprintf("num_image in [%s]", quoteInts(md.NumImage)))
	}
	if md.TypeFile != "" {
		parts = append(parts, fmt.Sprintf("type_file == %q", md.TypeFile))
	}

	return strings.Join(parts, " and ")
}

// Combined joins each document's full clause with `or`, parenthesized so a
// single compound search matches the union of documents under their own
// constraints. Documents are emitted in sorted file_id order for determinism.
// No documents compiles to "", the "no filter" sentinel.
func Combined(metadata map[string]domain.ExtractedMetadata) string {
	if len(metadata) == 0 {
		return ""
	}

	ids := make([]string, 0, len(metadata))
	for id := range metadata {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, "("+ForDocument(id, metadata[id])+")")
	}
	return strings.Join(clauses, " or ")
}

// CombineClauses OR-joins already-compiled per-document expressions,
// parenthesizing each. Empty input compiles to "".
func CombineClauses(exprs []string) string {
	clauses := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e == "" {
			continue
		}
		clauses = append(clauses, "("+e+")")
	}
	return strings.Join(clauses, " or ")
}

// OnlyFileIDs builds the plain scope filter for a set of documents with no
// metadata constraints.
func OnlyFileIDs(fileIDs []string) string {
	switch len(fileIDs) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("file_id == %q", fileIDs[0])
	default:
		return fmt.Sprintf("file_id in [%s]", quoteStrings(fileIDs))
	}
}

// And conjunction-joins two expressions, parenthesizing both. Either side
// empty yields the other unchanged.
func And(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return fmt.Sprintf("(%s) and (%s)", a, b)
}

// quoteInts renders integers as quoted string literals: page and image
// labels are string-typed in the store.
func quoteInts(vals []int) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = strconv.Quote(strconv.Itoa(v))
	}
	return strings.Join(quoted, ", ")
}

func quoteStrings(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}
