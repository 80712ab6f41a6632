package selection

import (
	"context"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// SummarySource reads the document catalogue from the summaries collection.
type SummarySource interface {
	AllSummaries(ctx context.Context) ([]domain.DocumentSummary, error)
}

// TextModel submits one prompt to an LLM provider.
type TextModel interface {
	Complete(ctx context.Context, systemPrompt, prompt string, maxTokens int, temperature float32) (string, error)
}
