package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider asks the Gemini API for suggestions.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *genai.Client
}

// NewGeminiProvider constructs the provider. An empty baseURL uses the public API.
func NewGeminiProvider(apiKey, model, baseURL string) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{apiKey: apiKey, model: model, baseURL: baseURL}
}

// Name implements Provider.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Available reports whether an API key is configured.
func (p *GeminiProvider) Available(_ context.Context) bool {
	return p.apiKey != ""
}

func (p *GeminiProvider) connect(ctx context.Context) (*genai.Client, error) {
	if p.client != nil {
		return p.client, nil
	}

	cfg := &genai.ClientConfig{APIKey: p.apiKey, Backend: genai.BackendGeminiAPI}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p.client = client

	return client, nil
}

// Suggest sends prompt as a single user turn.
func (p *GeminiProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	client, err := p.connect(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	slog.Debug("Requesting suggestion", "provider", ProviderGemini, "model", p.model)

	resp, err := client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: codeOnlyPersona}}},
		},
	)
	if err != nil {
		slog.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return resp.Text(), nil
}
