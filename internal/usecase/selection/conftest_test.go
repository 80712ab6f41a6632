package selection

import (
	"context"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

// mockSummarySource implements SummarySource for tests.
type mockSummarySource struct {
	summaries []domain.DocumentSummary
	err       error
	calls     int
}

func (m *mockSummarySource) AllSummaries(context.Context) ([]domain.DocumentSummary, error) {
	m.calls++
	return m.summaries, m.err
}

// mockTextModel implements TextModel with a scripted reply.
type mockTextModel struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastSystem string
}

func (m *mockTextModel) Complete(
	_ context.Context, systemPrompt, prompt string, _ int, _ float32,
) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastPrompt = prompt
	return m.response, m.err
}

func testSummaries() []domain.DocumentSummary {
	return []domain.DocumentSummary{
		{FileID: "d1", FileName: "guide.pdf", TypeFile: "PDF", Text: "installation guide"},
		{FileID: "d2", FileName: "reference.pdf", TypeFile: "PDF", Text: "API reference"},
	}
}
