package filter

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

func TestForDocument_AlwaysContainsFileIDClause(t *testing.T) {
	got := ForDocument("doc_001", domain.ExtractedMetadata{})
	want := `file_id == "doc_001"`
	if got != want {
		t.Fatalf("ForDocument = %q, want %q", got, want)
	}
}

func TestForDocument_PagesRange(t *testing.T) {
	md := domain.ExtractedMetadata{Pages: []int{1, 2, 3}}
	got := ForDocument("d1", md)
	want := `file_id == "d1" and pages in ["1", "2", "3"]`
	if got != want {
		t.Fatalf("ForDocument = %q, want %q", got, want)
	}
}

func TestForDocument_AllFields(t *testing.T) {
	md := domain.ExtractedMetadata{
		Pages:       []int{4},
		Chapters:    []string{"intro", "setup"},
		SearchImage: true,
		NumImage:    []int{2},
		TypeFile:    "PDF",
	}
	got := ForDocument("d9", md)
	want := `file_id == "d9" and pages in ["4"] and chapters in ["intro", "setup"]` +
		` and num_image in ["2"] and type_file == "PDF"`
	if got != want {
		t.Fatalf("ForDocument = %q, want %q", got, want)
	}
}

func TestForDocument_SearchImageAloneAddsNothing(t *testing.T) {
	md := domain.ExtractedMetadata{SearchImage: true}
	got := ForDocument("d1", md)
	if got != `file_id == "d1"` {
		t.Fatalf("search_image without num_image must not add a clause, got %q", got)
	}
}

func TestForDocument_AbsentFieldsAreNoOp(t *testing.T) {
	// nil and empty slices both compile to no clause, never a tautology.
	for _, md := range []domain.ExtractedMetadata{
		{Pages: nil, Chapters: nil, NumImage: nil},
		{Pages: []int{}, Chapters: []string{}, NumImage: []int{}},
	} {
		got := ForDocument("d1", md)
		if strings.Contains(got, "in [") {
			t.Fatalf("absent field produced a clause: %q", got)
		}
	}
}

func TestForDocument_Deterministic(t *testing.T) {
	md := domain.ExtractedMetadata{Pages: []int{7, 8}, TypeFile: "TXT"}
	first := ForDocument("d1", md)
	for i := 0; i < 10; i++ {
		if got := ForDocument("d1", md); got != first {
			t.Fatalf("ForDocument not deterministic: %q vs %q", got, first)
		}
	}
}

func TestCombined_Empty(t *testing.T) {
	if got := Combined(nil); got != "" {
		t.Fatalf(`Combined(nil) = %q, want ""`, got)
	}
	if got := Combined(map[string]domain.ExtractedMetadata{}); got != "" {
		t.Fatalf(`Combined(empty) = %q, want ""`, got)
	}
}

func TestCombined_SortedUnion(t *testing.T) {
	metadata := map[string]domain.ExtractedMetadata{
		"doc_b": {Chapters: []string{"c1"}},
		"doc_a": {Pages: []int{1, 2}},
	}
	got := Combined(metadata)
	want := `(file_id == "doc_a" and pages in ["1", "2"]) or (file_id == "doc_b" and chapters in ["c1"])`
	if got != want {
		t.Fatalf("Combined = %q, want %q", got, want)
	}
}

func TestCombineClauses(t *testing.T) {
	got := CombineClauses([]string{`file_id == "a"`, "", `file_id == "b"`})
	want := `(file_id == "a") or (file_id == "b")`
	if got != want {
		t.Fatalf("CombineClauses = %q, want %q", got, want)
	}
	if got := CombineClauses(nil); got != "" {
		t.Fatalf(`CombineClauses(nil) = %q, want ""`, got)
	}
}

func TestOnlyFileIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"none", nil, ""},
		{"single", []string{"d1"}, `file_id == "d1"`},
		{"several", []string{"d1", "d2"}, `file_id in ["d1", "d2"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnlyFileIDs(tt.ids); got != tt.want {
				t.Fatalf("OnlyFileIDs(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestAnd(t *testing.T) {
	if got := And(`a == "1"`, `b == "2"`); got != `(a == "1") and (b == "2")` {
		t.Fatalf("And = %q", got)
	}
	if got := And("", `b == "2"`); got != `b == "2"` {
		t.Fatalf("And with empty left = %q", got)
	}
	if got := And(`a == "1"`, ""); got != `a == "1"` {
		t.Fatalf("And with empty right = %q", got)
	}
}
