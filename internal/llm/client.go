// Package llm wraps the external completion capability behind a small
// interface the extraction pipeline can depend on.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/danbita/jira-cloud-api/internal/config"
	"github.com/danbita/jira-cloud-api/internal/logging"
)

// Client is an OpenAI-backed completion provider. It satisfies
// extract.CompletionProvider.
type Client struct {
	model llms.Model
	name  string
}

// NewClient creates a completion client from configuration. An empty API
// key is an error; callers that can live without the AI path should treat
// it as a degraded mode rather than fatal.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion provider requires OPENAI_API_KEY")
	}

	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	logging.Info("completion client initialized",
		"model", cfg.Model,
		"api_key", logging.MaskSensitive(cfg.APIKey))

	return &Client{model: model, name: cfg.Model}, nil
}

// Complete sends the system and user prompts to the model and returns the
// raw completion text. Low temperature and JSON mode keep the structured
// extraction output stable.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := c.model.GenerateContent(ctx, content,
		llms.WithTemperature(0.1),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return resp.Choices[0].Content, nil
}
