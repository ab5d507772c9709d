package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "codellama"

// OllamaProvider asks a self-hosted Ollama server for suggestions.
type OllamaProvider struct {
	serverURL string
	model     string
}

// NewOllamaProvider constructs the provider. An empty serverURL disables it.
func NewOllamaProvider(serverURL, model string) *OllamaProvider {
	if model == "" {
		model = DefaultOllamaModel
	}

	return &OllamaProvider{serverURL: serverURL, model: model}
}

// Name implements Provider.
func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

// Available reports whether a server URL is configured.
func (p *OllamaProvider) Available(_ context.Context) bool {
	return p.serverURL != ""
}

// Suggest sends prompt through langchaingo's single-prompt helper.
func (p *OllamaProvider) Suggest(ctx context.Context, prompt string) (string, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(p.serverURL),
		ollama.WithModel(p.model),
	)
	if err != nil {
		return "", fmt.Errorf("ollama client: %w", err)
	}

	slog.Debug("Requesting suggestion", "provider", ProviderOllama, "model", p.model, "server", p.serverURL)

	text, err := llms.GenerateFromSinglePrompt(ctx, llm, codeOnlyPersona+"\n\n"+prompt)
	if err != nil {
		slog.Error("Ollama request failed", "error", err)
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return text, nil
}
