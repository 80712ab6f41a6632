// Package metadata turns a user query into per-document Milvus filter
// expressions: summaries -> markdown -> LLM extraction -> filter compilation.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

const extractorSystemPrompt = `You extract search constraints from a user query about a document library.

You receive the query and a markdown catalogue of documents. Identify, per document, which pages, chapters or images the user is asking about.

Reply with a single JSON object and nothing else. No prose, no markdown fences. The object is keyed by document ID; each value has exactly these keys:

- "pages": array of integers, or null when the query names no pages. Expand ranges: "pages 2 to 5" becomes [2, 3, 4, 5].
- "chapters": array of strings, or null.
- "search_image": boolean, true only when the user asks about images.
- "num_image": array of integers identifying specific images, or null.
- "type_file": the document type as listed in the catalogue, or null when the query does not mention it.

Only include documents the query actually constrains. Never invent IDs, pages or chapters that are not in the catalogue.`

// extractorPromptTemplate carries the request payload. The two placeholder
// tokens are a fixed contract with the system prompt above.
const extractorPromptTemplate = `# User query:
{{USER_QUERY}}

# Available documents:
{{DOCUMENTS}}
`

// rawMetadata mirrors the JSON shape the model is instructed to emit.
type rawMetadata struct {
	Pages       []int    `json:"pages"`
	Chapters    []string `json:"chapters"`
	SearchImage *bool    `json:"search_image"`
	NumImage    []int    `json:"num_image"`
	TypeFile    string   `json:"type_file"`
}

// Extractor asks an LLM which metadata constraints a query implies for each
// document, then validates the reply against the summary records.
type Extractor struct {
	model       TextModel
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewExtractor creates a metadata extractor bound to one text model.
func NewExtractor(model TextModel, maxTokens int, temperature float32, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{model: model, maxTokens: maxTokens, temperature: temperature, logger: logger}
}

// Extract returns per-document constraints keyed by file_id. The model's
// output is untrusted: ids absent from summaries are dropped, empty arrays
// collapse to "no constraint", and type_file is taken from the summary record
// rather than the model whenever the model asserts one. A reply that is not
// valid JSON fails with ErrMetadataParse.
func (e *Extractor) Extract(
	ctx context.Context,
	userQuery, markdown string,
	summaries []domain.DocumentSummary,
) (map[string]domain.ExtractedMetadata, error) {
	prompt := strings.NewReplacer(
		"{{USER_QUERY}}", userQuery,
		"{{DOCUMENTS}}", markdown,
	).Replace(extractorPromptTemplate)

	response, err := e.model.Complete(ctx, extractorSystemPrompt, prompt, e.maxTokens, e.temperature)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]rawMetadata)
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataParse, err)
	}

	typeByID := make(map[string]string, len(summaries))
	for _, s := range summaries {
		typeByID[s.FileID] = s.TypeFile
	}

	extracted := make(map[string]domain.ExtractedMetadata, len(raw))
	for id, md := range raw {
		summaryType, known := typeByID[id]
		if !known {
			e.logger.Warn("model returned metadata for unknown document", zap.String("file_id", id))
			continue
		}

		out := domain.ExtractedMetadata{
			Pages:    md.Pages,
			Chapters: md.Chapters,
			NumImage: md.NumImage,
		}
		if len(out.Pages) == 0 {
			out.Pages = nil
		}
		if len(out.Chapters) == 0 {
			out.Chapters = nil
		}
		if len(out.NumImage) == 0 {
			out.NumImage = nil
		}
		if md.SearchImage != nil {
			out.SearchImage = *md.SearchImage
		}
		if md.TypeFile != "" {
			out.TypeFile = summaryType
		}
		extracted[id] = out
	}

	e.logger.Info("metadata extracted",
		zap.Int("documents", len(extracted)),
		zap.Int("discarded", len(raw)-len(extracted)),
	)
	return extracted, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models insist on
// despite the prompt.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
