package adapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gapfill.dev/pkg/gapfill/internal/adapter"
	"gapfill.dev/pkg/gapfill/internal/adapter/mocks"
)

func ghArgs(args ...string) interface{} {
	return mock.MatchedBy(func(cmd adapter.Command) bool {
		return cmd.Name == "gh" && cmd.Capture && assert.ObjectsAreEqual(args, cmd.Args)
	})
}

func TestCLIProvider_PromptStyles(t *testing.T) {
	tests := []struct {
		name string
		help string
		want []string
	}{
		{
			name: "long flag",
			help: "Usage: gh copilot suggest [flags]\n  --prompt string   the request\n",
			want: []string{"copilot", "suggest", "--prompt", "write tests"},
		},
		{
			name: "short flag",
			help: "Flags:\n  -p, --target string\n  -t, --type string\n",
			want: []string{"copilot", "suggest", "-p", "write tests"},
		},
		{
			name: "positional",
			help: "Usage: gh copilot suggest <question>\n  -h, --help\n",
			want: []string{"copilot", "suggest", "write tests"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := mocks.NewMockShellAdapter(t)
			provider := adapter.NewGHCopilotProvider(shell, "/work")

			shell.On("Run", mock.Anything, ghArgs("copilot", "suggest", "--help")).
				Return(adapter.Result{Stdout: tt.help}, nil).Once()
			shell.On("Run", mock.Anything, ghArgs(tt.want...)).
				Return(adapter.Result{Stdout: "def test_x():\n    assert True\n"}, nil).Once()

			ctx := context.Background()
			require.True(t, provider.Available(ctx))
			assert.True(t, provider.Available(ctx), "availability is cached")

			text, err := provider.Suggest(ctx, "write tests")
			require.NoError(t, err)
			assert.Contains(t, text, "def test_x")
		})
	}
}

func TestCLIProvider_UnavailableWhenHelpFails(t *testing.T) {
	t.Run("missing executable", func(t *testing.T) {
		shell := mocks.NewMockShellAdapter(t)
		provider := adapter.NewCopilotCLIProvider(shell, "/work")

		shell.On("Run", mock.Anything, mock.MatchedBy(func(cmd adapter.Command) bool {
			return cmd.Name == "copilot" && assert.ObjectsAreEqual([]string{"generate", "--help"}, cmd.Args)
		})).Return(adapter.Result{ExitCode: -1}, errors.New("run copilot: executable file not found")).Once()

		assert.False(t, provider.Available(context.Background()))
		assert.Equal(t, adapter.ProviderCopilotCLI, provider.Name())
	})

	t.Run("extension not installed", func(t *testing.T) {
		shell := mocks.NewMockShellAdapter(t)
		provider := adapter.NewGHCopilotProvider(shell, "/work")

		shell.On("Run", mock.Anything, mock.Anything).
			Return(adapter.Result{ExitCode: 1, Stderr: "unknown command \"copilot\""}, nil).Once()

		assert.False(t, provider.Available(context.Background()))
	})
}

func TestCLIProvider_SuggestNonZeroExit(t *testing.T) {
	shell := mocks.NewMockShellAdapter(t)
	provider := adapter.NewGHCopilotProvider(shell, "/work")

	shell.On("Run", mock.Anything, mock.Anything).
		Return(adapter.Result{ExitCode: 2, Stdout: "partial"}, nil).Once()

	text, err := provider.Suggest(context.Background(), "write tests")
	require.Error(t, err)
	assert.Empty(t, text)
}
