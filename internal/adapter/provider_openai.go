package adapter

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const codeOnlyPersona = "You write pytest test modules. Reply with Python source code only, no prose."

// OpenAIProvider asks an OpenAI-compatible chat endpoint for suggestions.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider constructs the provider. An empty baseURL uses the public API.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Available reports whether an API key is configured.
func (p *OpenAIProvider) Available(_ context.Context) bool {
	return p.apiKey != ""
}

// Suggest sends prompt as a single user message.
func (p *OpenAIProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	slog.Debug("Requesting suggestion", "provider", ProviderOpenAI, "model", p.model)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: codeOnlyPersona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
