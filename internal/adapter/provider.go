package adapter

import "context"

// Registered provider names, in their default order of preference.
const (
	ProviderGHCopilot  = "gh-copilot"
	ProviderCopilotCLI = "copilot-cli"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

// DefaultProviderOrder is the order providers are tried in when none is configured.
var DefaultProviderOrder = []string{
	ProviderGHCopilot,
	ProviderCopilotCLI,
	ProviderOpenAI,
	ProviderGemini,
	ProviderOllama,
}

// Provider is a code-suggestion back-end.
type Provider interface {
	// Name identifies the provider in logs and the run summary.
	Name() string
	// Available reports whether the provider can be used in this environment.
	Available(ctx context.Context) bool
	// Suggest submits prompt and returns the raw response text.
	Suggest(ctx context.Context, prompt string) (string, error)
}
