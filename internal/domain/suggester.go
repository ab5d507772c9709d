package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	m "gapfill.dev/pkg/gapfill/internal/model"
)

// Suggester obtains raw test suggestions from the first provider that answers.
type Suggester interface {
	// Suggest returns ErrNoProvider when no provider is available and
	// ErrProviderEmpty when every available provider failed or answered with nothing.
	Suggest(ctx context.Context, prompt m.Prompt) (m.RawSuggestion, error)
}

type suggester struct {
	providers []adapter.Provider
	timeout   time.Duration
}

// NewSuggester constructs a Suggester trying providers in order. A zero timeout
// leaves provider calls unbounded.
func NewSuggester(providers []adapter.Provider, timeout time.Duration) Suggester {
	return &suggester{providers: providers, timeout: timeout}
}

// SelectProviders orders the catalog by name. Unknown names are an error.
func SelectProviders(order []string, catalog map[string]adapter.Provider) ([]adapter.Provider, error) {
	providers := make([]adapter.Provider, 0, len(order))

	for _, name := range order {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		p, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", name)
		}

		providers = append(providers, p)
	}

	return providers, nil
}

func (s *suggester) Suggest(ctx context.Context, prompt m.Prompt) (m.RawSuggestion, error) {
	available := 0

	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			return m.RawSuggestion{}, err
		}

		if !p.Available(ctx) {
			continue
		}

		available++

		text, err := s.ask(ctx, p, prompt)
		if err != nil {
			slog.Warn("Provider failed", "provider", p.Name(), "source", prompt.Source.Rel, "kind", prompt.Kind, "error", err)
			continue
		}

		if strings.TrimSpace(text) == "" {
			slog.Info("Provider returned an empty suggestion", "provider", p.Name(), "source", prompt.Source.Rel)
			continue
		}

		slog.Info("Received suggestion", "provider", p.Name(), "source", prompt.Source.Rel, "kind", prompt.Kind, "bytes", len(text))

		return m.RawSuggestion{Provider: p.Name(), Text: text}, nil
	}

	if available == 0 {
		return m.RawSuggestion{}, ErrNoProvider
	}

	return m.RawSuggestion{}, ErrProviderEmpty
}

func (s *suggester) ask(ctx context.Context, p adapter.Provider, prompt m.Prompt) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return p.Suggest(ctx, prompt.Text)
}
