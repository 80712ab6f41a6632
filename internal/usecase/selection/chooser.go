package selection

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// chooserSystemPrompt instructs the model to answer with a bare id list.
// The reply format is enforced by instruction, not by strict parsing: the
// parser tolerates whitespace and drops anything that is not a known id.
const chooserSystemPrompt = `You are a document selection assistant for a retrieval system.

You will receive a user query and a catalogue of available documents. Each
document entry shows its ID, file type, page/chapter/image counts, and a
description of its contents.

Select the documents whose contents are relevant to answering the query.

Rules:
- Reply with ONLY the IDs of the relevant documents, separated by commas.
- Do not add explanations, labels, or any other text.
- Use the IDs exactly as shown in the catalogue.
- If no document is relevant, reply with an empty line.

Example reply:
doc_001, doc_003`

// idSeparators splits a model reply on commas, whitespace, and newlines.
var idSeparators = regexp.MustCompile(`[,\s]+`)

// Chooser asks an LLM to pick relevant documents from a markdown catalogue.
type Chooser struct {
	model       TextModel
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewChooser creates an LLM document chooser.
func NewChooser(model TextModel, maxTokens int, temperature float32, logger *zap.Logger) *Chooser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chooser{model: model, maxTokens: maxTokens, temperature: temperature, logger: logger}
}

// Choose sends the catalogue and query to the model and returns the ids it
// picked, restricted to knownIDs. The model reply is untrusted input:
// hallucinated or malformed tokens are dropped, never surfaced as errors.
func (c *Chooser) Choose(
	ctx context.Context, markdown, userQuery string, knownIDs map[string]struct{},
) ([]string, error) {
	prompt := fmt.Sprintf("# User query:\n%s\n\n# Available documents:\n%s\n", userQuery, markdown)

	response, err := c.model.Complete(ctx, chooserSystemPrompt, prompt, c.maxTokens, c.temperature)
	if err != nil {
		return nil, fmt.Errorf("choose documents: %w", err)
	}

	return c.parseResponse(response, knownIDs), nil
}

func (c *Chooser) parseResponse(response string, knownIDs map[string]struct{}) []string {
	var selected []string
	seen := make(map[string]struct{})
	for _, token := range idSeparators.Split(strings.TrimSpace(response), -1) {
		id := strings.TrimSpace(token)
		if id == "" {
			continue
		}
		if _, ok := knownIDs[id]; !ok {
			c.logger.Warn("dropping unknown document id from llm reply", zap.String("id", id))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		selected = append(selected, id)
	}

	if len(selected) == 0 {
		c.logger.Warn("no valid document ids in llm reply", zap.String("response", response))
	}
	return selected
}
