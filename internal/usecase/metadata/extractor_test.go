package metadata

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

func TestExtract_PageRange(t *testing.T) {
	model := &mockTextModel{response: `{"d1": {"pages": [1, 2, 3], "chapters": null, "search_image": false, "num_image": null, "type_file": null}}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "pages 1 to 3 of d1", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	md, ok := got["d1"]
	if !ok {
		t.Fatalf("no entry for d1: %v", got)
	}
	if !reflect.DeepEqual(md.Pages, []int{1, 2, 3}) {
		t.Fatalf("pages = %v, want [1 2 3]", md.Pages)
	}
	if md.Chapters != nil || md.NumImage != nil || md.SearchImage || md.TypeFile != "" {
		t.Fatalf("unconstrained fields not empty: %+v", md)
	}
}

func TestExtract_StripsCodeFence(t *testing.T) {
	model := &mockTextModel{response: "```json\n{\"d1\": {\"pages\": [4]}}\n```"}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "page 4", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !reflect.DeepEqual(got["d1"].Pages, []int{4}) {
		t.Fatalf("pages = %v, want [4]", got["d1"].Pages)
	}
}

func TestExtract_MalformedJSONIsParseError(t *testing.T) {
	model := &mockTextModel{response: "the user wants pages 1 through 3"}
	ex := NewExtractor(model, 500, 0.2, nil)

	_, err := ex.Extract(context.Background(), "query", "catalogue", testSummaries())
	if !errors.Is(err, domain.ErrMetadataParse) {
		t.Fatalf("err = %v, want ErrMetadataParse", err)
	}
}

func TestExtract_DropsUnknownIDs(t *testing.T) {
	model := &mockTextModel{response: `{"d1": {"pages": [1]}, "d9": {"pages": [2]}}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "query", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, ok := got["d9"]; ok {
		t.Fatal("unknown id d9 must be discarded")
	}
	if _, ok := got["d1"]; !ok {
		t.Fatal("known id d1 missing")
	}
}

func TestExtract_EmptyArraysMeanNoConstraint(t *testing.T) {
	model := &mockTextModel{response: `{"d1": {"pages": [], "chapters": [], "num_image": []}}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "query", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	md := got["d1"]
	if md.Pages != nil || md.Chapters != nil || md.NumImage != nil {
		t.Fatalf("empty arrays must collapse to nil: %+v", md)
	}
}

func TestExtract_TypeFileComesFromSummary(t *testing.T) {
	model := &mockTextModel{response: `{"d1": {"type_file": "WORD"}}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "the pdf", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got["d1"].TypeFile != "PDF" {
		t.Fatalf("type_file = %q, want summary value PDF", got["d1"].TypeFile)
	}
}

func TestExtract_SearchImageDefaultsFalse(t *testing.T) {
	model := &mockTextModel{response: `{"d1": {"pages": [1]}}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	got, err := ex.Extract(context.Background(), "query", "catalogue", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got["d1"].SearchImage {
		t.Fatal("search_image must default to false")
	}
}

func TestExtract_LLMErrorPropagates(t *testing.T) {
	llmErr := errors.New("provider unavailable")
	ex := NewExtractor(&mockTextModel{err: llmErr}, 500, 0.2, nil)

	_, err := ex.Extract(context.Background(), "query", "catalogue", testSummaries())
	if !errors.Is(err, llmErr) {
		t.Fatalf("err = %v, want %v", err, llmErr)
	}
}

func TestExtract_PromptCarriesQueryAndDocuments(t *testing.T) {
	model := &mockTextModel{response: `{}`}
	ex := NewExtractor(model, 500, 0.2, nil)

	if _, err := ex.Extract(context.Background(), "pages 1 to 3", "## guide.pdf", testSummaries()); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, want := range []string{"pages 1 to 3", "## guide.pdf"} {
		if !strings.Contains(model.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, model.lastPrompt)
		}
	}
	if strings.Contains(model.lastPrompt, "{{") {
		t.Errorf("placeholder left unsubstituted:\n%s", model.lastPrompt)
	}
	if model.lastSystem != extractorSystemPrompt {
		t.Error("system prompt must be the fixed extractor template")
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
