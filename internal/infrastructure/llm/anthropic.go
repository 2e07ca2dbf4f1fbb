package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"

	"StarlinkWatch/internal/config"
	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// AnthropicClient generates digests through the Claude messages API.
type AnthropicClient struct {
	apiKey   string
	settings types.RequestSettings
}

var _ ports.DigestGenerator = (*AnthropicClient)(nil)

// NewAnthropicClient requires an API key; model and limits fall back to defaults.
func NewAnthropicClient(cfg config.DigestConfig) (*AnthropicClient, error) {
	if cfg.AnthropicKey == "" {
		return nil, fmt.Errorf("anthropic client misconfigured: ANTHROPIC_API_KEY is not set")
	}
	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &AnthropicClient{
		apiKey: cfg.AnthropicKey,
		settings: types.RequestSettings{
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Temperature,
		},
	}, nil
}

// Generate sends one prompt. The llmkit call carries no context, so ctx is
// only checked before dispatch.
func (a *AnthropicClient) Generate(ctx context.Context, date string, items []domain.CandidateItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := userPrompt(date, items)
	if err != nil {
		return "", err
	}

	response, err := anthropic.PromptWithSettings(systemPrompt, user, "", a.apiKey, a.settings)
	if err != nil {
		return "", fmt.Errorf("anthropic digest request: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("anthropic returned no content")
	}

	content := strings.TrimSpace(response.Content[0].Text)
	if content == "" {
		return "", fmt.Errorf("anthropic returned empty digest")
	}
	return content, nil
}
