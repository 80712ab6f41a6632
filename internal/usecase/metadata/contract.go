package metadata

import (
	"context"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// SummarySource reads summary records for an explicit set of documents.
type SummarySource interface {
	SummariesByFileIDs(ctx context.Context, fileIDs []string) ([]domain.DocumentSummary, error)
}

// TextModel submits one prompt to an LLM provider.
type TextModel interface {
	Complete(ctx context.Context, systemPrompt, prompt string, maxTokens int, temperature float32) (string, error)
}
