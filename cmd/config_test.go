package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "gapfill", configBaseName)
	assert.Equal(t, "gapfill.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "GAPFILL", envPrefix)
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, "src", v.GetString(sourceRootKey))
	assert.Equal(t, "tests", v.GetString(testsRootKey))
	assert.Equal(t, ".py", v.GetString(extensionKey))
	assert.Equal(t, "origin", v.GetString(remoteKey))
	assert.Equal(t, "main", v.GetString(mainlineKey))
	assert.False(t, v.GetBool(strictKey))
	assert.Equal(t, []string{"gh-copilot", "copilot-cli", "openai", "gemini", "ollama"}, v.GetStringSlice(providerOrderKey))
	assert.Equal(t, time.Duration(0), v.GetDuration(providerTimeout))
	assert.Equal(t, []string{"python", "-m", "pytest"}, v.GetStringSlice(runnerCommandKey))
	assert.Equal(t, ".coverage", v.GetString(coverageDataKey))
	assert.Equal(t, "function", v.GetString(granularityKey))
	assert.Equal(t, "merge", v.GetString(gapStrategyKey))
	assert.True(t, v.GetBool(gapRevalidateKey))
	assert.Equal(t, filepath.Join(os.TempDir(), "gapfill.log"), v.GetString(logFilenameKey))
}

func TestConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("GAPFILL_GAP_STRATEGY", "replace")
	t.Setenv("GAPFILL_VCS_MAINLINE", "trunk")

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(keyReplacer)
	setDefaults(v)

	assert.Equal(t, "replace", v.GetString(gapStrategyKey))
	assert.Equal(t, "trunk", v.GetString(mainlineKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestFirstEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	assert.Equal(t, "google-key", firstEnv(geminiKeyEnv, googleKeyEnv))
	assert.Equal(t, "fallback", firstNonEmpty(" ", "fallback"))
	assert.Empty(t, firstNonEmpty())
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "gapfill.log")
	configureLogger(logPath, true)

	slog.Debug("Logger configured", "path", logPath)

	contents, err := os.ReadFile(logPath)
	assert.NoError(t, err)
	assert.Contains(t, string(contents), "Logger configured")
}
