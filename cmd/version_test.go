package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Output(t *testing.T) {
	original := viper.GetStringSlice(providerOrderKey)
	viper.Set(providerOrderKey, []string{"openai", "ollama"})
	t.Cleanup(func() { viper.Set(providerOrderKey, original) })

	cmd := newVersionCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "gapfill version\t")
	assert.Contains(t, output, "go version\t")
	assert.Contains(t, output, "config file\t")
	assert.Contains(t, output, "providers\topenai, ollama\n")
}

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name       string
		configFile string
		order      []string
		want       string
	}{
		{
			name:       "config file and providers",
			configFile: "/work/gapfill.yaml",
			order:      []string{"gh-copilot", "gemini"},
			want: "gapfill version\tv1.2.0\ngo version\tgo1.22.0\n" +
				"config file\t/work/gapfill.yaml\nproviders\tgh-copilot, gemini\n",
		},
		{
			name: "defaults only",
			want: "gapfill version\tv1.2.0\ngo version\tgo1.22.0\n" +
				"config file\tdefaults\nproviders\tnone\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cmd := &cobra.Command{}
			cmd.SetOut(out)

			printVersion(cmd, "v1.2.0", "go1.22.0", tt.configFile, tt.order)

			assert.Equal(t, tt.want, out.String())
		})
	}
}
