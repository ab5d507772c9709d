package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	"gapfill.dev/pkg/gapfill/internal/adapter/mocks"
)

func namedProvider(t *testing.T, name string) *mocks.MockProvider {
	t.Helper()

	p := mocks.NewMockProvider(t)
	p.On("Name").Return(name).Maybe()

	return p
}

func TestSuggester_FirstAvailableProviderWins(t *testing.T) {
	gh := namedProvider(t, "gh-copilot")
	gh.On("Available", mock.Anything).Return(false).Once()

	openai := namedProvider(t, "openai")
	openai.On("Available", mock.Anything).Return(true).Once()
	openai.On("Suggest", mock.Anything, mock.AnythingOfType("string")).Return("def test_add():\n    pass\n", nil).Once()

	gemini := namedProvider(t, "gemini")

	s := NewSuggester([]adapter.Provider{gh, openai, gemini}, 0)

	raw, err := s.Suggest(context.Background(), WholeModulePrompt(mathopsSource, nil))
	require.NoError(t, err)
	assert.Equal(t, "openai", raw.Provider)
	assert.Contains(t, raw.Text, "def test_add")
}

func TestSuggester_FailingProviderFallsThrough(t *testing.T) {
	gh := namedProvider(t, "gh-copilot")
	gh.On("Available", mock.Anything).Return(true).Once()
	gh.On("Suggest", mock.Anything, mock.Anything).Return("", errors.New("gh-copilot: exit status 1")).Once()

	blank := namedProvider(t, "copilot-cli")
	blank.On("Available", mock.Anything).Return(true).Once()
	blank.On("Suggest", mock.Anything, mock.Anything).Return("  \n", nil).Once()

	ollama := namedProvider(t, "ollama")
	ollama.On("Available", mock.Anything).Return(true).Once()
	ollama.On("Suggest", mock.Anything, mock.Anything).Return("def test_x():\n    pass\n", nil).Once()

	s := NewSuggester([]adapter.Provider{gh, blank, ollama}, time.Second)

	raw, err := s.Suggest(context.Background(), SingleFunctionPrompt(mathopsSource, "divide"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", raw.Provider)
}

func TestSuggester_NoProvider(t *testing.T) {
	gh := namedProvider(t, "gh-copilot")
	gh.On("Available", mock.Anything).Return(false).Once()

	s := NewSuggester([]adapter.Provider{gh}, 0)

	_, err := s.Suggest(context.Background(), WholeModulePrompt(mathopsSource, nil))
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = NewSuggester(nil, 0).Suggest(context.Background(), WholeModulePrompt(mathopsSource, nil))
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestSuggester_AllEmpty(t *testing.T) {
	gh := namedProvider(t, "gh-copilot")
	gh.On("Available", mock.Anything).Return(true).Once()
	gh.On("Suggest", mock.Anything, mock.Anything).Return("", nil).Once()

	s := NewSuggester([]adapter.Provider{gh}, 0)

	_, err := s.Suggest(context.Background(), WholeModulePrompt(mathopsSource, nil))
	assert.ErrorIs(t, err, ErrProviderEmpty)
}

func TestSuggester_TimeoutBoundsProviderCall(t *testing.T) {
	slow := namedProvider(t, "openai")
	slow.On("Available", mock.Anything).Return(true).Once()
	slow.On("Suggest", mock.Anything, mock.Anything).Return(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, nil).Once()

	s := NewSuggester([]adapter.Provider{slow}, 10*time.Millisecond)

	_, err := s.Suggest(context.Background(), WholeModulePrompt(mathopsSource, nil))
	assert.ErrorIs(t, err, ErrProviderEmpty)
}

func TestSelectProviders(t *testing.T) {
	gh := namedProvider(t, "gh-copilot")
	openai := namedProvider(t, "openai")
	catalog := map[string]adapter.Provider{"gh-copilot": gh, "openai": openai}

	got, err := SelectProviders([]string{"openai", " ", "gh-copilot"}, catalog)
	require.NoError(t, err)
	assert.Equal(t, []adapter.Provider{openai, gh}, got)

	_, err = SelectProviders([]string{"bard"}, catalog)
	require.Error(t, err)
}
