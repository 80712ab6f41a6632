package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/metrics"
)

// TextModel is an LLM completion provider using the OpenAI-compatible chat API.
type TextModel struct {
	client    *openai.Client
	model     string
	operation string
	logger    *zap.Logger
}

// TextModelConfig holds the completion provider settings.
type TextModelConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Operation labels metrics: "chooser" or "extractor".
	Operation string
	Logger    *zap.Logger
}

// NewTextModel creates an OpenAI-compatible completion provider.
func NewTextModel(cfg *TextModelConfig) *TextModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TextModel{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		operation: cfg.Operation,
		logger:    logger,
	}
}

// Complete submits one prompt and returns the completion text. One network
// call per invocation, no retries: transient provider failures propagate
// wrapped with domain.ErrLLMCall.
func (m *TextModel) Complete(
	ctx context.Context, systemPrompt, prompt string, maxTokens int, temperature float32,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()

	resp, err := m.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(m.operation, m.model, "error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(m.operation, m.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLLMCall)
	}

	metrics.LLMRequestsTotal.WithLabelValues(m.operation, m.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(m.operation, m.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(m.operation, m.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(m.operation, m.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	m.logger.Debug("llm completion",
		zap.String("operation", m.operation),
		zap.String("model", m.model),
		zap.Duration("latency", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (m *TextModel) HealthCheck(ctx context.Context) error {
	if _, err := m.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrLLMCall for correct classification.
func parseAPIError(err error) error {
	wrap := domain.ErrLLMCall

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("llm API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("llm API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("llm API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("llm request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
